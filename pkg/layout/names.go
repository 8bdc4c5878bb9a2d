package layout

// Recommended widget type tags. The set is open: layouts may carry types that
// no renderer understands yet.
const (
	TypeBannerCarousel = "banner_carousel"
	TypeCategoryGrid   = "category_grid"
	TypeProductRail    = "product_rail"
	TypeProductGrid    = "product_grid"
	TypeSpacer         = "spacer"
	TypeDivider        = "divider"
	TypeOfferBanner    = "offer_banner"
	TypeCountdownTimer = "countdown_timer"
	TypeCustom         = "custom"
)
