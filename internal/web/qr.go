package web

import (
	"bytes"
	"io"
	"net/http"

	qrcode "github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"go.uber.org/zap"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// QRCode renders the bio-link URL as a PNG, for putting the tracked link on
// printed material or directly in the Instagram bio.
func (h *AdminHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	qrc, err := qrcode.New(h.cfg.TrackURL())
	if err != nil {
		h.log.Error("admin: generate qr code", zap.Error(err))
		http.Error(w, "failed to generate qr code", http.StatusInternalServerError)
		return
	}

	opts := []standard.ImageOption{
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(10),
		standard.WithBorderWidth(20),
	}

	var buf bytes.Buffer
	writer := standard.NewWithWriter(nopCloser{&buf}, opts...)
	if err := qrc.Save(writer); err != nil {
		h.log.Error("admin: render qr code", zap.Error(err))
		http.Error(w, "failed to render qr code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(buf.Bytes())
}
