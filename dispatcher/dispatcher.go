// Package dispatcher exposes the engine as a fixed catalog of named tools.
// It checks parameter shape, delegates, and wraps the outcome in a uniform
// {success, result, error} envelope. Business rules live in services.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"food-order-desk/apperrors"
	"food-order-desk/services"

	"github.com/go-playground/validator/v10"
)

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeArray   ParamType = "array"
)

func (t ParamType) article() string {
	switch t {
	case TypeInteger, TypeArray:
		return "an " + string(t)
	}
	return "a " + string(t)
}

// Param declares one tool parameter.
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  []Param `json:"parameters"`
}

// Result is the envelope every invocation returns.
type Result struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`

	kind apperrors.Kind
}

// Kind is the failure class of an unsuccessful result, empty on success.
func (r Result) Kind() apperrors.Kind {
	return r.kind
}

func success(v any) Result {
	return Result{Success: true, Result: v}
}

func failure(err error) Result {
	msg := err.Error()
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	return Result{Success: false, Error: msg, kind: apperrors.KindOf(err)}
}

type handlerFunc func(ctx context.Context, p params) (any, error)

type registration struct {
	tool   Tool
	handle handlerFunc
}

type Dispatcher struct {
	tickets  *services.TicketService
	orders   *services.OrderService
	policy   *services.PolicyService
	validate *validator.Validate

	catalog []registration
	byName  map[string]registration
}

func New(tickets *services.TicketService, orders *services.OrderService, policy *services.PolicyService) *Dispatcher {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	d := &Dispatcher{
		tickets:  tickets,
		orders:   orders,
		policy:   policy,
		validate: v,
		byName:   make(map[string]registration),
	}
	for _, reg := range d.registrations() {
		d.catalog = append(d.catalog, reg)
		d.byName[reg.tool.Name] = reg
	}
	return d
}

// Tools lists the catalog in registration order.
func (d *Dispatcher) Tools() []Tool {
	tools := make([]Tool, len(d.catalog))
	for i, reg := range d.catalog {
		tools[i] = reg.tool
		if tools[i].Parameters == nil {
			tools[i].Parameters = []Param{}
		}
	}
	return tools
}

// Execute runs the named tool. It never returns a Go error: every failure is
// folded into the envelope.
func (d *Dispatcher) Execute(ctx context.Context, name string, parameters map[string]any) Result {
	reg, ok := d.byName[name]
	if !ok {
		return failure(apperrors.NotFound("tool '%s' not found", name))
	}
	if parameters == nil {
		parameters = map[string]any{}
	}
	if err := checkParams(reg.tool.Parameters, parameters); err != nil {
		return failure(err)
	}
	out, err := reg.handle(ctx, params(parameters))
	if err != nil {
		return failure(err)
	}
	return success(out)
}

func checkParams(declared []Param, values map[string]any) error {
	for _, p := range declared {
		v, present := values[p.Name]
		if !present || v == nil || v == "" {
			if p.Required {
				return apperrors.Validation("%s is required and must be %s", p.Name, p.Type.article())
			}
			continue
		}
		if !hasType(v, p.Type) {
			if p.Required {
				return apperrors.Validation("%s is required and must be %s", p.Name, p.Type.article())
			}
			return apperrors.Validation("%s must be %s", p.Name, p.Type.article())
		}
	}
	return nil
}

// maxExactInteger bounds integer parameters to what a JSON number carries
// exactly and an int holds on every platform we build for.
const maxExactInteger = 1 << 53

func hasType(v any, t ParamType) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeInteger:
		f, ok := toFloat(v)
		return ok && f == math.Trunc(f) && math.Abs(f) <= maxExactInteger
	case TypeArray:
		_, ok := v.([]any)
		return ok
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// params is a shape-checked parameter bag.
type params map[string]any

func (p params) has(name string) bool {
	v, ok := p[name]
	return ok && v != nil
}

func (p params) str(name string) string {
	s, _ := p[name].(string)
	return s
}

func (p params) int(name string) int {
	f, _ := toFloat(p[name])
	return int(f)
}

// decode re-reads an array parameter into dst.
func (p params) decode(name string, dst any) error {
	raw, err := json.Marshal(p[name])
	if err != nil {
		return apperrors.Validation("%s is malformed", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Validation("%s is malformed: %s", name, describeDecodeError(err))
	}
	return nil
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.Kind())
	}
	return err.Error()
}

// checkEach runs struct validation on every element of a decoded list.
func checkEach[T any](v *validator.Validate, name string, list []T) error {
	for i := range list {
		err := v.Struct(list[i])
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return apperrors.Validation("%s[%d].%s is %s", name, i, fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		if err != nil {
			return apperrors.Validation("%s[%d] is invalid", name, i)
		}
	}
	return nil
}
