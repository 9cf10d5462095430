package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec probing for served MP4 items. The sample entry types found in the
// moov box are mapped back to the short codec tokens of the wire protocol,
// so that a start announcement can be generated for any item on disk.

// ProbeFile probes an MP4 file for its codec tokens.
func ProbeFile(path string) (audioToken, videoToken string, err error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer fh.Close()
	return ProbeReader(fh)
}

// ProbeReader probes MP4 data for its codec tokens. Works for both
// progressive and fragmented files, since only the moov box is inspected.
func ProbeReader(r io.Reader) (audioToken, videoToken string, err error) {
	f, err := mp4.DecodeFile(r)
	if err != nil {
		return "", "", fmt.Errorf("decode mp4: %w", err)
	}
	if f.Moov == nil {
		return "", "", fmt.Errorf("no moov box found")
	}
	return ProbeMoov(f.Moov)
}

// ProbeMoov maps the sample entries of a moov box to codec tokens.
func ProbeMoov(moov *mp4.MoovBox) (audioToken, videoToken string, err error) {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Minf == nil ||
			trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
			continue
		}
		for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
			switch child.Type() {
			case "avc1", "avc3":
				videoToken = "avc1"
			case "hvc1", "hev1":
				videoToken = "hvc1"
			case "av01":
				videoToken = "av01"
			case "mp4a":
				audioToken = "mp4a"
			case "Opus":
				audioToken = "opus"
			}
		}
	}
	if audioToken == "" && videoToken == "" {
		return "", "", fmt.Errorf("no playable track found")
	}
	return audioToken, videoToken, nil
}
