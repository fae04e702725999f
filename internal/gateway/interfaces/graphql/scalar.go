package graphql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/graph-gophers/graphql-go/errors"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// Decimal 金额标量，输出为两位小数的字符串
type Decimal struct {
	value decimal.Decimal
}

// NewDecimal 包装金额
func NewDecimal(d decimal.Decimal) Decimal {
	return Decimal{value: d}
}

// Value 返回金额
func (d Decimal) Value() decimal.Decimal { return d.value }

// ImplementsGraphQLType 对应 schema 中的 Decimal
func (Decimal) ImplementsGraphQLType(name string) bool { return name == "Decimal" }

// UnmarshalGraphQL 接受字符串或数字输入
func (d *Decimal) UnmarshalGraphQL(input any) error {
	switch v := input.(type) {
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid decimal %q", v)
		}
		d.value = parsed
	case int32:
		d.value = decimal.NewFromInt32(v)
	case int64:
		d.value = decimal.NewFromInt(v)
	case int:
		d.value = decimal.NewFromInt(int64(v))
	case float64:
		d.value = decimal.NewFromFloat(v)
	default:
		return fmt.Errorf("wrong type for Decimal: %T", input)
	}
	return nil
}

// MarshalJSON 输出两位小数字符串
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.value.StringFixed(2))
}

// panicReporter 记录解析器 panic，并向调用方返回屏蔽后的错误
type panicReporter struct{}

func (panicReporter) LogPanic(ctx context.Context, value any) {
	logger.Error(ctx, "graphql resolver panic", "panic", value)
}

func (panicReporter) MakePanicError(_ context.Context, _ any) *errors.QueryError {
	return &errors.QueryError{
		Message:    "internal server error",
		Extensions: map[string]any{"code": string(errorx.KindInternal)},
	}
}
