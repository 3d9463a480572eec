// Package payment talks to the card processor. The booking engine only needs
// an authorization for the exact total and a way to void it when the seat
// write loses a race.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrDeclined is returned when the processor refuses the charge.
var ErrDeclined = errors.New("payment declined")

type Card struct {
	Number string
	Expiry string
	CVV    string
}

type AuthorizeRequest struct {
	Amount   decimal.Decimal
	Currency string
	Card     *Card
	Email    string
	// Description shows on the statement.
	Description string
}

type Authorization struct {
	ID           string
	Amount       decimal.Decimal
	AuthorizedAt time.Time
}

type Gateway interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*Authorization, error)
	Void(ctx context.Context, authorizationID string) error
}

// declinedTestCard is the usual processor test number for a generic decline.
const declinedTestCard = "4000000000000002"

// SimulatedGateway approves valid cards without moving money.
type SimulatedGateway struct {
	declineOver decimal.Decimal
	log         *zap.Logger

	mu     sync.Mutex
	voided map[string]bool
}

// NewSimulatedGateway declines totals above declineOver when it is positive.
func NewSimulatedGateway(declineOver decimal.Decimal, log *zap.Logger) *SimulatedGateway {
	return &SimulatedGateway{
		declineOver: declineOver,
		log:         log.With(zap.String("gateway", "simulated")),
		voided:      make(map[string]bool),
	}
}

func (g *SimulatedGateway) Authorize(ctx context.Context, req AuthorizeRequest) (*Authorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if req.Card == nil {
		return nil, fmt.Errorf("%w: no payment method", ErrDeclined)
	}
	number := strings.NewReplacer(" ", "", "-", "").Replace(req.Card.Number)
	switch {
	case !utils.LuhnValid(number):
		return nil, fmt.Errorf("%w: invalid card number", ErrDeclined)
	case !utils.CardExpiryValid(req.Card.Expiry, time.Now()):
		return nil, fmt.Errorf("%w: card expired", ErrDeclined)
	case number == declinedTestCard:
		return nil, fmt.Errorf("%w: card declined by issuer", ErrDeclined)
	case g.declineOver.IsPositive() && req.Amount.GreaterThan(g.declineOver):
		return nil, fmt.Errorf("%w: amount exceeds limit", ErrDeclined)
	}

	auth := &Authorization{
		ID:           "auth_" + uuid.NewString(),
		Amount:       req.Amount,
		AuthorizedAt: time.Now().UTC(),
	}

	g.log.Info("Payment authorized",
		zap.String("authorization_id", auth.ID),
		zap.String("amount", utils.FormatAmount(req.Amount)),
		zap.String("card_last4", last4(number)),
	)
	return auth, nil
}

func (g *SimulatedGateway) Void(ctx context.Context, authorizationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	g.voided[authorizationID] = true
	g.mu.Unlock()

	g.log.Info("Payment voided", zap.String("authorization_id", authorizationID))
	return nil
}

// Voided reports whether an authorization was voided.
func (g *SimulatedGateway) Voided(authorizationID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.voided[authorizationID]
}

func last4(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
