// Package messages holds the chat texts sent to buyers and operators.
package messages

import (
	_ "embed"
	"fmt"
	"html"
	"strings"
	"text/template"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultCatalog []byte

type texts struct {
	Start        string `yaml:"start"`
	Registration struct {
		Denied          string `yaml:"denied"`
		AskName         string `yaml:"ask_name"`
		AskPrice        string `yaml:"ask_price"`
		InvalidPrice    string `yaml:"invalid_price"`
		AskDescription  string `yaml:"ask_description"`
		AskLink         string `yaml:"ask_link"`
		InvalidLink     string `yaml:"invalid_link"`
		AskRecurring    string `yaml:"ask_recurring"`
		RecurringYes    string `yaml:"recurring_yes"`
		RecurringNo     string `yaml:"recurring_no"`
		Created         string `yaml:"created"`
		ProviderError   string `yaml:"provider_error"`
		InternalError   string `yaml:"internal_error"`
		Canceled        string `yaml:"canceled"`
		NothingToCancel string `yaml:"nothing_to_cancel"`
		Expired         string `yaml:"expired"`
	} `yaml:"registration"`
	Catalog struct {
		Empty          string `yaml:"empty"`
		Header         string `yaml:"header"`
		LabelRecurring string `yaml:"label_recurring"`
		LabelLifetime  string `yaml:"label_lifetime"`
	} `yaml:"catalog"`
	Checkout struct {
		NotFound      string `yaml:"not_found"`
		PayPrompt     string `yaml:"pay_prompt"`
		PayButton     string `yaml:"pay_button"`
		ProviderError string `yaml:"provider_error"`
		InternalError string `yaml:"internal_error"`
	} `yaml:"checkout"`
	Access struct {
		None   string `yaml:"none"`
		Header string `yaml:"header"`
		Item   string `yaml:"item"`
	} `yaml:"access"`
	Notify struct {
		Granted  string `yaml:"granted"`
		Renewed  string `yaml:"renewed"`
		Canceled string `yaml:"canceled"`
	} `yaml:"notify"`
}

// Catalog renders chat texts. It is safe for concurrent use.
type Catalog struct {
	t         texts
	templates map[string]*template.Template
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// MustLoad is Load for package initialization and tests.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a catalog from YAML. Every text must be present and every template must parse.
func Parse(data []byte) (*Catalog, error) {
	var t texts
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse message catalog: %w", err)
	}

	c := &Catalog{t: t, templates: make(map[string]*template.Template)}
	for name, text := range c.all() {
		if text == "" {
			return nil, fmt.Errorf("message catalog: %s is empty", name)
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("message catalog: %s: %w", name, err)
		}
		c.templates[name] = tmpl
	}
	return c, nil
}

func (c *Catalog) all() map[string]string {
	r := c.t.Registration
	return map[string]string{
		"start":                          c.t.Start,
		"registration.denied":            r.Denied,
		"registration.ask_name":          r.AskName,
		"registration.ask_price":         r.AskPrice,
		"registration.invalid_price":     r.InvalidPrice,
		"registration.ask_description":   r.AskDescription,
		"registration.ask_link":          r.AskLink,
		"registration.invalid_link":      r.InvalidLink,
		"registration.ask_recurring":     r.AskRecurring,
		"registration.recurring_yes":     r.RecurringYes,
		"registration.recurring_no":      r.RecurringNo,
		"registration.created":           r.Created,
		"registration.provider_error":    r.ProviderError,
		"registration.internal_error":    r.InternalError,
		"registration.canceled":          r.Canceled,
		"registration.nothing_to_cancel": r.NothingToCancel,
		"registration.expired":           r.Expired,
		"catalog.empty":                  c.t.Catalog.Empty,
		"catalog.header":                 c.t.Catalog.Header,
		"catalog.label_recurring":        c.t.Catalog.LabelRecurring,
		"catalog.label_lifetime":         c.t.Catalog.LabelLifetime,
		"checkout.not_found":             c.t.Checkout.NotFound,
		"checkout.pay_prompt":            c.t.Checkout.PayPrompt,
		"checkout.pay_button":            c.t.Checkout.PayButton,
		"checkout.provider_error":        c.t.Checkout.ProviderError,
		"checkout.internal_error":        c.t.Checkout.InternalError,
		"access.none":                    c.t.Access.None,
		"access.header":                  c.t.Access.Header,
		"access.item":                    c.t.Access.Item,
		"notify.granted":                 c.t.Notify.Granted,
		"notify.renewed":                 c.t.Notify.Renewed,
		"notify.canceled":                c.t.Notify.Canceled,
	}
}

func (c *Catalog) render(name string, data interface{}) string {
	var b strings.Builder
	if err := c.templates[name].Execute(&b, data); err != nil {
		return c.all()[name]
	}
	return b.String()
}

func (c *Catalog) Start(firstName string) string {
	return c.render("start", map[string]string{"FirstName": firstName})
}

func (c *Catalog) RegistrationDenied() string   { return c.render("registration.denied", nil) }
func (c *Catalog) AskName() string              { return c.render("registration.ask_name", nil) }
func (c *Catalog) InvalidPrice() string         { return c.render("registration.invalid_price", nil) }
func (c *Catalog) AskDescription() string       { return c.render("registration.ask_description", nil) }
func (c *Catalog) AskRecurring() string         { return c.render("registration.ask_recurring", nil) }
func (c *Catalog) RecurringYesLabel() string    { return c.render("registration.recurring_yes", nil) }
func (c *Catalog) RecurringNoLabel() string     { return c.render("registration.recurring_no", nil) }
func (c *Catalog) RegistrationCreated() string  { return c.render("registration.created", nil) }
func (c *Catalog) RegistrationInternal() string { return c.render("registration.internal_error", nil) }
func (c *Catalog) RegistrationCanceled() string { return c.render("registration.canceled", nil) }
func (c *Catalog) NothingToCancel() string      { return c.render("registration.nothing_to_cancel", nil) }
func (c *Catalog) RegistrationExpired() string  { return c.render("registration.expired", nil) }

func (c *Catalog) AskPrice(currency string) string {
	return c.render("registration.ask_price", map[string]string{"Currency": strings.ToUpper(currency)})
}

func (c *Catalog) AskLink(prefix string) string {
	return c.render("registration.ask_link", map[string]string{"Prefix": prefix})
}

func (c *Catalog) InvalidLink(prefix string) string {
	return c.render("registration.invalid_link", map[string]string{"Prefix": prefix})
}

func (c *Catalog) RegistrationProviderError(message string) string {
	return c.render("registration.provider_error", map[string]string{"Message": message})
}

func (c *Catalog) CatalogEmpty() string  { return c.render("catalog.empty", nil) }
func (c *Catalog) CatalogHeader() string { return c.render("catalog.header", nil) }

// OfferingLabel is the purchase button text for o.
func (c *Catalog) OfferingLabel(o *entity.Offering) string {
	data := map[string]string{"Name": o.Name}
	if o.Recurring {
		return c.render("catalog.label_recurring", data)
	}
	return c.render("catalog.label_lifetime", data)
}

func (c *Catalog) OfferingNotFound() string { return c.render("checkout.not_found", nil) }
func (c *Catalog) PayButton() string        { return c.render("checkout.pay_button", nil) }
func (c *Catalog) CheckoutInternal() string { return c.render("checkout.internal_error", nil) }

// PayPrompt is HTML formatted.
func (c *Catalog) PayPrompt(offeringName string) string {
	return c.render("checkout.pay_prompt", map[string]string{"Name": html.EscapeString(offeringName)})
}

func (c *Catalog) CheckoutProviderError(message string) string {
	return c.render("checkout.provider_error", map[string]string{"Message": message})
}

// AccessList renders the buyer's grants as HTML, or the "no purchases" text when there are
// none.
func (c *Catalog) AccessList(access []*entity.GrantedAccess) string {
	if len(access) == 0 {
		return c.render("access.none", nil)
	}

	lines := make([]string, 0, len(access)+2)
	lines = append(lines, c.render("access.header", nil), "")
	for i, a := range access {
		lines = append(lines, c.render("access.item", map[string]interface{}{
			"Index": i + 1,
			"Name":  html.EscapeString(a.Name),
			"Link":  html.EscapeString(a.ResourceLink),
		}))
	}
	return strings.Join(lines, "\n")
}

func (c *Catalog) AccessGranted(resourceLink string) string {
	return c.render("notify.granted", map[string]string{"Link": resourceLink})
}

func (c *Catalog) SubscriptionRenewed() string  { return c.render("notify.renewed", nil) }
func (c *Catalog) SubscriptionCanceled() string { return c.render("notify.canceled", nil) }
