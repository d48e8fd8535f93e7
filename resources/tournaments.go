package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/credentials"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/jrsteele09/academy-admin/internal/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const largeTournamentPayload = 10 * 1024 * 1024

// Tournaments refuses to send anything without a stored access token.
type Tournaments struct {
	col   Collection
	store credentials.Store
}

func NewTournaments(api API, store credentials.Store) *Tournaments {
	return &Tournaments{col: NewCollection(api, tournamentsPath), store: store}
}

func (t *Tournaments) List(ctx context.Context, params url.Values) (*client.Response, error) {
	if err := t.requireToken(); err != nil {
		return nil, err
	}
	return t.col.List(ctx, params)
}

func (t *Tournaments) Get(ctx context.Context, id string) (*client.Response, error) {
	if err := t.requireToken(); err != nil {
		return nil, err
	}
	return t.col.Get(ctx, id)
}

func (t *Tournaments) Create(ctx context.Context, in TournamentInput) (*client.Response, error) {
	if err := t.requireToken(); err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return t.col.Create(ctx, in)
}

// Update sends a partial update. A location given as an object is sent as its JSON
// string, which is what the backend stores. Backend failures are reported as
// "failed to update tournament (status): message".
func (t *Tournaments) Update(ctx context.Context, id string, fields map[string]any) (*client.Response, error) {
	if err := t.requireToken(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.Wrap(apperrors.ErrMissingID, "tournament ID is required for update")
	}

	body := make(map[string]any, len(fields))
	for k, v := range fields {
		body[k] = v
	}
	if loc, ok := body["location"]; ok && loc != nil {
		if _, isString := loc.(string); !isString {
			encoded, err := json.Marshal(loc)
			if err != nil {
				return nil, errors.Wrap(apperrors.ErrInvalidInput, "location: "+err.Error())
			}
			body["location"] = string(encoded)
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	logger := log.With().Str("tournament", id).Int("size_kb", len(payload)/1024).Logger()
	if len(payload) > largeTournamentPayload {
		logger.Warn().Msg("tournament update payload is very large")
	}
	logger.Debug().Msg("updating tournament")

	resp, err := t.col.Update(ctx, id, json.RawMessage(payload))
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = "Unknown server error"
			}
			return nil, fmt.Errorf("failed to update tournament (%d): %s: %w", apiErr.StatusCode, msg, err)
		}
		return nil, err
	}
	return resp, nil
}

func (t *Tournaments) Delete(ctx context.Context, id string) (*client.Response, error) {
	if err := t.requireToken(); err != nil {
		return nil, err
	}
	return t.col.Delete(ctx, id)
}

func (t *Tournaments) Participants(ctx context.Context, id string) (*client.Response, error) {
	if err := t.requireToken(); err != nil {
		return nil, err
	}
	return t.col.do(ctx, http.MethodGet, id, nil, "participants")
}

// Notify sends a notification to the participants of a tournament.
func (t *Tournaments) Notify(ctx context.Context, id string, in NotificationInput) (*client.Response, error) {
	if err := t.requireToken(); err != nil {
		return nil, err
	}
	if in.RecipientType == "" {
		in.RecipientType = RecipientsAll
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return t.col.do(ctx, http.MethodPost, id, in, "notify")
}

func (t *Tournaments) requireToken() error {
	if tok, ok := t.store.Get(credentials.KeyAccessToken); !ok || tok == "" {
		return apperrors.ErrAuthenticationNeeded
	}
	return nil
}
