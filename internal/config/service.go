package config

type ServiceConfig struct {
	Name        string `validate:"required"`
	Environment string
	Version     string
	// PublicBaseURL is the externally reachable address used for checkout redirects and the
	// chat webhook.
	PublicBaseURL string `validate:"required,url"`
}

type StripeConfig struct {
	SecretKey         string `validate:"required"`
	WebhookSecret     string `validate:"required"`
	Currency          string `validate:"required,len=3"`
	APIURL            string `validate:"required,url"`
	MaxNetworkRetries int64  `validate:"gte=0"`
}

type TelegramConfig struct {
	Token   string `validate:"required"`
	APIURL  string `validate:"required,url"`
	AdminID int64  `validate:"required"`
	// WebhookSecret is compared with X-Telegram-Bot-Api-Secret-Token on every update.
	WebhookSecret    string  `validate:"required"`
	InviteLinkPrefix string  `validate:"required"`
	UpdatesPerSecond float64 `validate:"gt=0"`
	RegisterWebhook  bool
}
