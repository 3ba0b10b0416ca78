package converter

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/yuanying/ebook2pdf/internal/extract"
	"github.com/yuanying/ebook2pdf/internal/mobi"
	"github.com/yuanying/ebook2pdf/internal/paginate"
	"github.com/yuanying/ebook2pdf/internal/pdf"
)

func TestExplain(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"huff cdic", fmt.Errorf("extract text: %w", mobi.ErrUnsupportedCompression), "HUFF/CDIC"},
		{"malformed", fmt.Errorf("extract text: %w", mobi.ErrMalformedContainer), "damaged"},
		{"bad extension", fmt.Errorf("%w: %q", extract.ErrUnsupportedFormat, ".xyz"), "not supported"},
		{"surface", fmt.Errorf("%w: read regular font: no such file", paginate.ErrSurfaceInit), "font"},
		{"empty document", pdf.ErrEmptyDocument, "no pages"},
		{"missing input", fmt.Errorf("read input: %w", os.ErrNotExist), "does not exist"},
		{"unknown", errors.New("disk on fire"), "disk on fire"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Explain(tc.err)
			if !strings.Contains(got, tc.want) {
				t.Fatalf("Explain(%v) = %q, want substring %q", tc.err, got, tc.want)
			}
		})
	}
}
