// Package certificates renders completion certificates and stores the resulting
// documents.
package certificates

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/fogleman/gg"
	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Document holds the fields printed on a certificate.
type Document struct {
	CertificateID string
	StudentName   string
	CourseTitle   string
	IssuedAt      time.Time
	TotalHours    float64
}

type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// A4 landscape at 150 dpi.
const (
	canvasWidth  = 1754
	canvasHeight = 1240
	pageWidthMM  = 297.0
	pageHeightMM = 210.0
)

// PDFRenderer draws the certificate as a raster with gg and wraps it in a one-page PDF.
type PDFRenderer struct {
	regular *truetype.Font
	bold    *truetype.Font
}

func NewPDFRenderer() (*PDFRenderer, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &PDFRenderer{regular: regular, bold: bold}, nil
}

// TotalHours converts lesson minutes to the hours printed on a certificate: at least
// one hour, rounded to a tenth.
func TotalHours(minutes int64) float64 {
	hours := math.Max(float64(minutes)/60, 1)
	return math.Round(hours*10) / 10
}

func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	raster, err := r.drawPNG(doc)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate "+doc.CertificateID, true)
	pdf.SetCreationDate(doc.IssuedAt)
	pdf.AddPage()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("certificate", opts, bytes.NewReader(raster))
	pdf.ImageOptions("certificate", 0, 0, pageWidthMM, pageHeightMM, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return out.Bytes(), nil
}

func (r *PDFRenderer) drawPNG(doc Document) ([]byte, error) {
	dc := gg.NewContext(canvasWidth, canvasHeight)
	w, h := float64(canvasWidth), float64(canvasHeight)

	dc.SetHexColor("#FBF8F1")
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetHexColor("#1F3A5F")
	dc.SetLineWidth(14)
	dc.DrawRectangle(40, 40, w-80, h-80)
	dc.Stroke()
	dc.SetHexColor("#C9A227")
	dc.SetLineWidth(4)
	dc.DrawRectangle(70, 70, w-140, h-140)
	dc.Stroke()

	cx := w / 2
	dc.SetHexColor("#1F3A5F")
	dc.SetFontFace(r.face(r.bold, 84))
	dc.DrawStringAnchored("CERTIFICATE OF COMPLETION", cx, 250, 0.5, 0.5)

	dc.SetHexColor("#444444")
	dc.SetFontFace(r.face(r.regular, 40))
	dc.DrawStringAnchored("This certifies that", cx, 390, 0.5, 0.5)

	dc.SetHexColor("#111111")
	dc.SetFontFace(r.face(r.bold, 72))
	dc.DrawStringWrapped(doc.StudentName, cx, 490, 0.5, 0.5, w-400, 1.2, gg.AlignCenter)

	dc.SetHexColor("#444444")
	dc.SetFontFace(r.face(r.regular, 40))
	dc.DrawStringAnchored("has successfully completed the course", cx, 610, 0.5, 0.5)

	dc.SetHexColor("#1F3A5F")
	dc.SetFontFace(r.face(r.bold, 56))
	dc.DrawStringWrapped(doc.CourseTitle, cx, 710, 0.5, 0.5, w-400, 1.2, gg.AlignCenter)

	dc.SetHexColor("#C9A227")
	dc.SetLineWidth(3)
	dc.DrawLine(cx-300, 820, cx+300, 820)
	dc.Stroke()

	dc.SetHexColor("#333333")
	dc.SetFontFace(r.face(r.regular, 34))
	dc.DrawStringAnchored(fmt.Sprintf("Total study time: %.1f hours", doc.TotalHours), cx, 890, 0.5, 0.5)
	dc.DrawStringAnchored("Issued on "+doc.IssuedAt.Format("January 2, 2006"), cx, 950, 0.5, 0.5)

	dc.SetHexColor("#777777")
	dc.SetFontFace(r.face(r.regular, 24))
	dc.DrawStringAnchored("Certificate ID: "+doc.CertificateID, cx, h-130, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// face builds a fresh face per call; truetype faces are not safe for concurrent use.
func (r *PDFRenderer) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
}
