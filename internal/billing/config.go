package billing

// Config holds Stripe credentials and the price catalog.
type Config struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`

	ProspectorPriceID string `env:"STRIPE_PRICE_PROSPECTOR"`
	NetworkerPriceID  string `env:"STRIPE_PRICE_NETWORKER"`
	RainmakerPriceID  string `env:"STRIPE_PRICE_RAINMAKER"`

	// Founding-member schedule prices: the discounted introductory phase and
	// the standard phase it transitions into.
	FoundingIntroPriceID    string `env:"STRIPE_PRICE_FOUNDING_INTRO"`
	FoundingStandardPriceID string `env:"STRIPE_PRICE_FOUNDING_STANDARD"`
}
