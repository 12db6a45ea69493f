package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickwarner/adinsights/internal/filters"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/validation"
)

// errBadQuery marks a malformed or out-of-range query parameter.
var errBadQuery = errors.New("invalid query")

// viewQuery is the raw selection and target overrides of a view request.
type viewQuery struct {
	From          string   `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string   `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Channels      []string `json:"channel" validate:"dive,required"`
	CampaignTypes []string `json:"campaign_type" validate:"dive,required"`
	Products      []string `json:"product" validate:"dive,required"`

	TargetROAS       *float64 `json:"target_roas" validate:"omitempty,gt=0"`
	TargetACOS       *float64 `json:"target_acos" validate:"omitempty,gt=0"`
	TargetCPA        *float64 `json:"target_cpa" validate:"omitempty,gt=0"`
	MinSpend         *float64 `json:"min_spend" validate:"omitempty,gte=0"`
	FlagMinSpend     *float64 `json:"flag_min_spend" validate:"omitempty,gte=0"`
	MinOrdersPromote *int64   `json:"min_orders_promote" validate:"omitempty,gte=0"`
}

// queryError carries the per-parameter problems of a rejected request.
type queryError struct {
	fields []validationFieldOutput
}

func (e *queryError) Error() string {
	msgs := make([]string, len(e.fields))
	for i, f := range e.fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *queryError) Unwrap() error { return errBadQuery }

func fieldError(field, format string, args ...any) *queryError {
	return &queryError{fields: []validationFieldOutput{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}

// listParam accepts both repeated parameters and comma-separated values.
func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fieldError(key, "%s must be a number", key)
	}
	return &f, nil
}

func parseViewQuery(q url.Values) (viewQuery, error) {
	vq := viewQuery{
		From:          strings.TrimSpace(q.Get("from")),
		To:            strings.TrimSpace(q.Get("to")),
		Channels:      listParam(q, "channel"),
		CampaignTypes: listParam(q, "campaign_type"),
		Products:      listParam(q, "product"),
	}

	targets := []struct {
		key string
		dst **float64
	}{
		{"target_roas", &vq.TargetROAS},
		{"target_acos", &vq.TargetACOS},
		{"target_cpa", &vq.TargetCPA},
		{"min_spend", &vq.MinSpend},
		{"flag_min_spend", &vq.FlagMinSpend},
	}
	for _, t := range targets {
		v, err := floatParam(q, t.key)
		if err != nil {
			return viewQuery{}, err
		}
		*t.dst = v
	}
	if raw := strings.TrimSpace(q.Get("min_orders_promote")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return viewQuery{}, fieldError("min_orders_promote", "min_orders_promote must be an integer")
		}
		vq.MinOrdersPromote = &n
	}

	if verr := validation.ValidateStruct(&vq); verr != nil {
		qe := &queryError{}
		for _, f := range verr.Fields {
			qe.fields = append(qe.fields, validationFieldOutput{Field: f.Field, Message: f.Message})
		}
		return viewQuery{}, qe
	}
	return vq, nil
}

// criteria converts the validated selection. Dates were checked by the
// validator, so parse errors cannot occur here.
func (vq viewQuery) criteria() (filters.Criteria, error) {
	c := filters.Criteria{
		Channels:      vq.Channels,
		CampaignTypes: vq.CampaignTypes,
		Products:      vq.Products,
	}
	if vq.From != "" {
		c.From, _ = time.Parse(time.DateOnly, vq.From)
	}
	if vq.To != "" {
		c.To, _ = time.Parse(time.DateOnly, vq.To)
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return filters.Criteria{}, fieldError("to", "to must not be before from")
	}
	return c, nil
}

// thresholds applies the overrides on top of def and validates the result.
func (vq viewQuery) thresholds(def models.TargetThresholds) (models.TargetThresholds, error) {
	th := def
	for _, o := range []struct {
		src *float64
		dst *float64
	}{
		{vq.TargetROAS, &th.TargetROAS},
		{vq.TargetACOS, &th.TargetACOS},
		{vq.TargetCPA, &th.TargetCPA},
		{vq.MinSpend, &th.MinSpend},
		{vq.FlagMinSpend, &th.FlagMinSpend},
	} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	if vq.MinOrdersPromote != nil {
		th.MinOrdersPromote = *vq.MinOrdersPromote
	}
	if err := th.Validate(); err != nil {
		return models.TargetThresholds{}, err
	}
	return th, nil
}
