// Package bot maps Telegram updates onto the registration, checkout and catalog use cases.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/telegram"
	"github.com/wekeepgrowing/vipgate/internal/messages"
	"github.com/wekeepgrowing/vipgate/internal/usecase"
	"go.uber.org/zap"
)

// Callback data understood by the dispatcher.
const (
	callbackBuyPrefix    = "buy_"
	callbackRecurringYes = "recurring_yes"
	callbackRecurringNo  = "recurring_no"
)

// BotAPI is the subset of the Bot API the dispatcher replies through.
type BotAPI interface {
	SendMessage(ctx context.Context, req *telegram.SendMessageRequest) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text, parseMode string, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
}

type Config struct {
	Currency   string
	LinkPrefix string
}

type Dispatcher struct {
	api          BotAPI
	registration *usecase.RegistrationService
	checkout     *usecase.CheckoutService
	catalog      *usecase.CatalogService
	texts        *messages.Catalog
	config       Config
	logger       *zap.Logger
}

func NewDispatcher(
	api BotAPI,
	registration *usecase.RegistrationService,
	checkout *usecase.CheckoutService,
	catalog *usecase.CatalogService,
	texts *messages.Catalog,
	config Config,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		api:          api,
		registration: registration,
		checkout:     checkout,
		catalog:      catalog,
		texts:        texts,
		config:       config,
		logger:       logger,
	}
}

// reply is an outgoing message. A reply to a button press replaces the pressed message.
type reply struct {
	text      string
	parseMode string
	markup    *telegram.InlineKeyboardMarkup
}

// Dispatch handles one update. The returned error is for logging only; Telegram is never
// asked to redeliver.
func (d *Dispatcher) Dispatch(ctx context.Context, update *telegram.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil && update.Message.Text != "":
		return d.handleMessage(ctx, update.Message)
	default:
		d.logger.Debug("Ignoring update", zap.Int64("update_id", update.ID))
		return nil
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *telegram.Message) error {
	var (
		r   *reply
		err error
	)

	if command, ok := parseCommand(msg.Text); ok {
		switch command {
		case "start":
			r = &reply{text: d.texts.Start(msg.From.FirstName)}
		case "comprar", "buy":
			r, err = d.offeringMenu(ctx)
		case "meusacessos", "myaccess":
			r, err = d.accessList(ctx, msg.From.ID)
		case "add":
			r, err = d.startRegistration(ctx, msg.Chat.ID, msg.From.ID)
		case "cancel":
			r, err = d.cancelRegistration(ctx, msg.Chat.ID)
		default:
			d.logger.Debug("Unknown command", zap.String("command", command))
			return nil
		}
	} else {
		r, err = d.registrationText(ctx, msg.Chat.ID, msg.From.ID, msg.Text)
	}

	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	return d.send(ctx, msg.Chat.ID, r)
}

func (d *Dispatcher) handleCallback(ctx context.Context, query *telegram.CallbackQuery) error {
	if err := d.api.AnswerCallbackQuery(ctx, query.ID, ""); err != nil {
		d.logger.Warn("Failed to answer callback query",
			zap.String("callback_query_id", query.ID),
			zap.Error(err))
	}
	// inaccessible (too old) messages cannot be edited
	msg := query.Message.Message
	if msg == nil {
		return nil
	}

	var (
		r   *reply
		err error
	)

	switch data := query.Data; {
	case data == callbackRecurringYes, data == callbackRecurringNo:
		r, err = d.recurrenceChoice(ctx, msg.Chat.ID, query.From.ID, data == callbackRecurringYes)
	case strings.HasPrefix(data, callbackBuyPrefix):
		offeringID, parseErr := strconv.ParseInt(strings.TrimPrefix(data, callbackBuyPrefix), 10, 64)
		if parseErr != nil {
			d.logger.Warn("Malformed purchase callback", zap.String("data", data))
			return nil
		}
		r, err = d.purchase(ctx, query.From, offeringID)
	default:
		d.logger.Debug("Ignoring callback", zap.String("data", data))
		return nil
	}

	if err != nil {
		return err
	}
	return d.edit(ctx, msg, r)
}

func (d *Dispatcher) offeringMenu(ctx context.Context) (*reply, error) {
	offerings, err := d.catalog.ListOfferings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}
	if len(offerings) == 0 {
		return &reply{text: d.texts.CatalogEmpty()}, nil
	}

	rows := make([][]telegram.InlineKeyboardButton, 0, len(offerings))
	for _, o := range offerings {
		rows = append(rows, []telegram.InlineKeyboardButton{{
			Text:         d.texts.OfferingLabel(o),
			CallbackData: callbackBuyPrefix + strconv.FormatInt(o.ID, 10),
		}})
	}
	return &reply{
		text:   d.texts.CatalogHeader(),
		markup: &telegram.InlineKeyboardMarkup{InlineKeyboard: rows},
	}, nil
}

func (d *Dispatcher) accessList(ctx context.Context, buyerID int64) (*reply, error) {
	access, err := d.catalog.ListAccess(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list access for buyer %d: %w", buyerID, err)
	}
	return &reply{text: d.texts.AccessList(access), parseMode: telegram.ParseModeHTML}, nil
}

func (d *Dispatcher) purchase(ctx context.Context, from telegram.User, offeringID int64) (*reply, error) {
	offering, err := d.catalog.GetOffering(ctx, offeringID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrOfferingNotFound) {
			return &reply{text: d.texts.OfferingNotFound()}, nil
		}
		return nil, fmt.Errorf("failed to load offering %d: %w", offeringID, err)
	}

	buyer := entity.Buyer{
		ID:        from.ID,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.Username,
	}
	session, err := d.checkout.InitiateCheckout(ctx, buyer, offeringID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrOfferingNotFound) {
			return &reply{text: d.texts.OfferingNotFound()}, nil
		}
		if pe, ok := provider.AsProviderError(err); ok {
			return &reply{text: d.texts.CheckoutProviderError(pe.Message)}, nil
		}
		d.logger.Error("Checkout failed",
			zap.Int64("buyer_id", buyer.ID),
			zap.Int64("offering_id", offeringID),
			zap.Error(err))
		return &reply{text: d.texts.CheckoutInternal()}, nil
	}

	return &reply{
		text:      d.texts.PayPrompt(offering.Name),
		parseMode: telegram.ParseModeHTML,
		markup: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: d.texts.PayButton(), URL: session.URL},
		}}},
	}, nil
}

func (d *Dispatcher) startRegistration(ctx context.Context, chatID, operatorID int64) (*reply, error) {
	result, err := d.registration.Start(ctx, chatID, operatorID)
	if errors.Is(err, domainErrors.ErrAuthorizationDenied) {
		return &reply{text: d.texts.RegistrationDenied()}, nil
	}
	if err != nil {
		return nil, err
	}
	return d.registrationReply(result), nil
}

// registrationText feeds plain text to an open dialog. Text outside a dialog gets no answer.
func (d *Dispatcher) registrationText(ctx context.Context, chatID, operatorID int64, text string) (*reply, error) {
	result, err := d.registration.HandleText(ctx, chatID, operatorID, text)
	if errors.Is(err, domainErrors.ErrNoActiveDialog) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d.registrationReply(result), nil
}

func (d *Dispatcher) recurrenceChoice(ctx context.Context, chatID, operatorID int64, recurring bool) (*reply, error) {
	result, err := d.registration.HandleRecurrenceChoice(ctx, chatID, operatorID, recurring)
	if errors.Is(err, domainErrors.ErrNoActiveDialog) {
		return &reply{text: d.texts.RegistrationExpired()}, nil
	}
	if err != nil {
		return nil, err
	}
	return d.registrationReply(result), nil
}

func (d *Dispatcher) cancelRegistration(ctx context.Context, chatID int64) (*reply, error) {
	result, err := d.registration.Cancel(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return d.registrationReply(result), nil
}

func (d *Dispatcher) registrationReply(r *usecase.RegistrationReply) *reply {
	switch r.Prompt {
	case usecase.PromptAskName:
		return &reply{text: d.texts.AskName()}
	case usecase.PromptAskPrice:
		return &reply{text: d.texts.AskPrice(d.config.Currency)}
	case usecase.PromptInvalidPrice:
		return &reply{text: d.texts.InvalidPrice()}
	case usecase.PromptAskDescription:
		return &reply{text: d.texts.AskDescription()}
	case usecase.PromptAskLink:
		return &reply{text: d.texts.AskLink(d.config.LinkPrefix)}
	case usecase.PromptInvalidLink:
		return &reply{text: d.texts.InvalidLink(d.config.LinkPrefix)}
	case usecase.PromptAskRecurrence:
		return &reply{
			text: d.texts.AskRecurring(),
			markup: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
				{Text: d.texts.RecurringYesLabel(), CallbackData: callbackRecurringYes},
				{Text: d.texts.RecurringNoLabel(), CallbackData: callbackRecurringNo},
			}}},
		}
	case usecase.PromptCreated:
		return &reply{text: d.texts.RegistrationCreated()}
	case usecase.PromptProviderFailure:
		return &reply{text: d.texts.RegistrationProviderError(r.Detail)}
	case usecase.PromptCanceled:
		return &reply{text: d.texts.RegistrationCanceled()}
	case usecase.PromptNothingToCancel:
		return &reply{text: d.texts.NothingToCancel()}
	default:
		return &reply{text: d.texts.RegistrationInternal()}
	}
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, r *reply) error {
	_, err := d.api.SendMessage(ctx, &telegram.SendMessageRequest{
		ChatID:      chatID,
		Text:        r.text,
		ParseMode:   r.parseMode,
		ReplyMarkup: r.markup,
	})
	return err
}

func (d *Dispatcher) edit(ctx context.Context, msg *telegram.Message, r *reply) error {
	return d.api.EditMessageText(ctx, msg.Chat.ID, msg.ID, r.text, r.parseMode, r.markup)
}

// parseCommand extracts "add" from "/add" or "/add@SomeBot extra".
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	command := strings.Fields(text)[0][1:]
	if i := strings.IndexByte(command, '@'); i >= 0 {
		command = command[:i]
	}
	return strings.ToLower(command), command != ""
}
