package html

import (
	"fmt"

	"github.com/goliatone/go-sdui/pkg/layout"
	"github.com/goliatone/go-sdui/pkg/payload"
)

var (
	bannerCarouselSchema = payload.MustCompile(layout.TypeBannerCarousel, `{
  "type": "object",
  "required": ["banners"],
  "properties": {
    "banners": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["imageUrl"],
        "properties": {
          "id": {"type": "string"},
          "imageUrl": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "subtitle": {"type": "string"},
          "link": {"type": "string"},
          "alt": {"type": "string", "default": ""}
        }
      }
    },
    "autoplay": {"type": "boolean", "default": false},
    "intervalMs": {"type": "integer", "minimum": 500, "default": 5000}
  }
}`)

	categoryGridSchema = payload.MustCompile(layout.TypeCategoryGrid, `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "default": ""},
    "columns": {"type": "integer", "minimum": 1, "maximum": 8, "default": 4},
    "categoryIds": {"type": "array", "items": {"type": "string"}},
    "limit": {"type": "integer", "minimum": 0, "default": 0}
  }
}`)

	productListSchema = `{
  "type": "object",
  "properties": {
    "title": {"type": "string", "default": ""},
    "categoryId": {"type": "string"},
    "collection": {"type": "string"},
    "columns": {"type": "integer", "minimum": 1, "maximum": 6, "default": 2},
    "limit": {"type": "integer", "minimum": 0, "default": %d},
    "showPrice": {"type": "boolean", "default": true}
  }
}`

	productRailSchema = payload.MustCompile(layout.TypeProductRail, fmt.Sprintf(productListSchema, 10))
	productGridSchema = payload.MustCompile(layout.TypeProductGrid, fmt.Sprintf(productListSchema, 20))

	spacerSchema = payload.MustCompile(layout.TypeSpacer, `{
  "type": "object",
  "properties": {
    "height": {"type": "number", "default": 0}
  }
}`)

	dividerSchema = payload.MustCompile(layout.TypeDivider, `{
  "type": "object",
  "properties": {
    "thickness": {"type": "number", "default": 0},
    "color": {"type": "string", "default": ""},
    "inset": {"type": "number", "default": 0}
  }
}`)

	offerBannerSchema = payload.MustCompile(layout.TypeOfferBanner, `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "subtitle": {"type": "string", "default": ""},
    "code": {"type": "string", "default": ""},
    "imageUrl": {"type": "string", "default": ""},
    "link": {"type": "string", "default": ""},
    "background": {"type": "string", "default": ""}
  }
}`)

	countdownSchema = payload.MustCompile(layout.TypeCountdownTimer, `{
  "type": "object",
  "required": ["endsAt"],
  "properties": {
    "title": {"type": "string", "default": ""},
    "endsAt": {"type": "string", "minLength": 1},
    "expiredText": {"type": "string", "default": "Offer ended"}
  }
}`)

	customSchema = payload.MustCompile(layout.TypeCustom, `{
  "type": "object",
  "required": ["html"],
  "properties": {
    "html": {"type": "string"}
  }
}`)
)
