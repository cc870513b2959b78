package netutil

import (
	"io"

	"github.com/mdp/qrterminal/v3"
)

// PrintQR renders url as a half-block QR code on w. Phones on the same
// network can scan it instead of typing the address. Low error correction
// keeps the code small enough for a standard 80-column terminal.
func PrintQR(w io.Writer, url string) {
	qrterminal.GenerateWithConfig(url, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		QuietZone:      1,
	})
}
