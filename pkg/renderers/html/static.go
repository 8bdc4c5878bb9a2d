package html

import (
	"context"
	"fmt"
	"math"

	"github.com/goliatone/go-sdui/pkg/widgets"
)

type banner struct {
	ID       string `json:"id,omitempty"`
	ImageURL string `json:"imageUrl"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Link     string `json:"link,omitempty"`
	Alt      string `json:"alt"`
}

type bannerCarouselData struct {
	Banners    []banner `json:"banners"`
	Autoplay   bool     `json:"autoplay"`
	IntervalMs int      `json:"intervalMs"`
}

func (r *Renderers) bannerCarousel(ctx context.Context, w widgets.Context) (widgets.Output, error) {
	var data bannerCarouselData
	if err := bannerCarouselSchema.Decode(w.Descriptor.Data, &data); err != nil {
		return widgets.Output{}, err
	}
	for idx := range data.Banners {
		data.Banners[idx].Link = safeURL(data.Banners[idx].Link)
		data.Banners[idx].ImageURL = safeURL(data.Banners[idx].ImageURL)
		if data.Banners[idx].Alt == "" {
			data.Banners[idx].Alt = data.Banners[idx].Title
		}
	}
	props := map[string]any{"banners": len(data.Banners)}
	if len(data.Banners) == 0 {
		return widgets.Output{Props: props}, nil
	}
	out, err := r.render(ctx, "banner_carousel", w, data, nil)
	if err != nil {
		return widgets.Output{}, err
	}
	return widgets.Output{HTML: out, Props: props}, nil
}

type offerBannerData struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Code       string `json:"code"`
	ImageURL   string `json:"imageUrl"`
	Link       string `json:"link"`
	Background string `json:"background"`
}

func (r *Renderers) offerBanner(ctx context.Context, w widgets.Context) (widgets.Output, error) {
	var data offerBannerData
	if err := offerBannerSchema.Decode(w.Descriptor.Data, &data); err != nil {
		return widgets.Output{}, err
	}
	data.Link = safeURL(data.Link)
	data.ImageURL = safeURL(data.ImageURL)
	if !styleValue.MatchString(data.Background) {
		data.Background = ""
	}
	out, err := r.render(ctx, "offer_banner", w, data, nil)
	if err != nil {
		return widgets.Output{}, err
	}
	props := map[string]any{"title": data.Title}
	if data.Code != "" {
		props["code"] = data.Code
	}
	return widgets.Output{HTML: out, Props: props}, nil
}

type spacerData struct {
	Height float64 `json:"height"`
}

// spacer renders an inert block. Negative or non-numeric heights collapse to
// zero.
func (r *Renderers) spacer(ctx context.Context, w widgets.Context) (widgets.Output, error) {
	var data spacerData
	if err := spacerSchema.DecodeLenient(w.Descriptor.Data, &data); err != nil {
		return widgets.Output{}, err
	}
	data.Height = clampLength(data.Height)
	if data.Height == 0 {
		return widgets.Output{}, nil
	}
	out, err := r.render(ctx, "spacer", w, data, nil)
	if err != nil {
		return widgets.Output{}, err
	}
	return widgets.Output{HTML: out, Height: data.Height}, nil
}

type dividerData struct {
	Thickness float64 `json:"thickness"`
	Color     string  `json:"color"`
	Inset     float64 `json:"inset"`
}

func (r *Renderers) divider(ctx context.Context, w widgets.Context) (widgets.Output, error) {
	var data dividerData
	if err := dividerSchema.DecodeLenient(w.Descriptor.Data, &data); err != nil {
		return widgets.Output{}, err
	}
	data.Thickness = clampLength(data.Thickness)
	data.Inset = clampLength(data.Inset)
	if data.Thickness == 0 {
		return widgets.Output{}, nil
	}
	if !styleValue.MatchString(data.Color) {
		data.Color = ""
	}
	out, err := r.render(ctx, "divider", w, data, nil)
	if err != nil {
		return widgets.Output{}, err
	}
	return widgets.Output{HTML: out, Height: data.Thickness}, nil
}

func clampLength(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

type countdownData struct {
	Title       string `json:"title"`
	EndsAt      string `json:"endsAt"`
	ExpiredText string `json:"expiredText"`
}

func (r *Renderers) countdown(ctx context.Context, w widgets.Context) (widgets.Output, error) {
	var data countdownData
	if err := countdownSchema.Decode(w.Descriptor.Data, &data); err != nil {
		return widgets.Output{}, err
	}
	endsAt, err := parseTime(data.EndsAt)
	if err != nil {
		return widgets.Output{}, fmt.Errorf("html renderer: countdown_timer: endsAt: %w", err)
	}
	remaining := endsAt.Sub(r.now())
	seconds := int64(math.Ceil(remaining.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	out, err := r.render(ctx, "countdown_timer", w, data, map[string]any{
		"remaining": seconds,
		"expired":   seconds == 0,
		"endsAt":    endsAt.UTC().Format(rfc3339),
	})
	if err != nil {
		return widgets.Output{}, err
	}
	return widgets.Output{
		HTML: out,
		Props: map[string]any{
			"remainingSeconds": seconds,
			"expired":          seconds == 0,
		},
	}, nil
}

type customData struct {
	HTML string `json:"html"`
}

// custom renders caller supplied markup after sanitising it.
func (r *Renderers) custom(ctx context.Context, w widgets.Context) (widgets.Output, error) {
	var data customData
	if err := customSchema.Decode(w.Descriptor.Data, &data); err != nil {
		return widgets.Output{}, err
	}
	clean := sanitizeMarkup(data.HTML)
	if clean == "" {
		return widgets.Output{}, nil
	}
	out, err := r.render(ctx, "custom", w, nil, map[string]any{"markup": clean})
	if err != nil {
		return widgets.Output{}, err
	}
	return widgets.Output{HTML: out}, nil
}
