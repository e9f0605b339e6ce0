package export

import (
	"fmt"
	"math"
	"strings"
)

// GenerateEDL renders a CMX 3600 style edit decision list from the
// resolved cuts. Record times accumulate so the events lay out
// back-to-back on the record side regardless of source gaps.
func GenerateEDL(cuts []ResolvedCut, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	recordOffset := 0.0
	for i, cut := range cuts {
		srcIn := secondsToTimecode(cut.StartS, fps)
		srcOut := secondsToTimecode(cut.EndS, fps)
		recIn := secondsToTimecode(recordOffset, fps)
		duration := cut.EndS - cut.StartS
		recOut := secondsToTimecode(recordOffset+duration, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", cut.ClipName),
			fmt.Sprintf("* MEDIA PATH:  %s", cut.MediaPath),
		)

		recordOffset += duration
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func secondsToTimecode(s float64, fps int) string {
	totalFrames := int(math.Round(s * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
