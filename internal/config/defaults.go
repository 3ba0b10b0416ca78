package config

import (
	"github.com/yuanying/ebook2pdf/internal/paginate"
	"github.com/yuanying/ebook2pdf/internal/pdf"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Output.Quality == 0 {
		cfg.Output.Quality = pdf.DefaultQuality
	}
	if cfg.Page.Width == 0 {
		cfg.Page.Width = paginate.PageWidth
	}
	if cfg.Page.Height == 0 {
		cfg.Page.Height = paginate.PageHeight
	}
	if cfg.Page.Margin == 0 {
		cfg.Page.Margin = paginate.Margin
	}
	if cfg.Page.LineHeight == 0 {
		cfg.Page.LineHeight = paginate.LineHeight
	}
	if cfg.Page.BodySize == 0 {
		cfg.Page.BodySize = paginate.BodySize
	}
	if cfg.Page.TitleSize == 0 {
		cfg.Page.TitleSize = paginate.TitleSize
	}
	if cfg.Page.TitleGap == 0 {
		cfg.Page.TitleGap = paginate.TitleGap
	}
	if cfg.Page.Scale == 0 {
		cfg.Page.Scale = paginate.RasterScale
	}
	// ProgressEvery stays zero here; the compositor fills its own cadence.
}
