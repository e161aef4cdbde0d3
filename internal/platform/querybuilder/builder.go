package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Condition renders one WHERE predicate. start is the first free $n
// placeholder index; the returned SQL fragment and bind args consume
// placeholders from there on.
type Condition interface {
	render(start int) (sql string, args []any)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) render(start int) (string, []any) {
	return c.column + " = " + placeholder(start), []any{c.value}
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: append([]any(nil), values...)}
}

func (c inCondition) render(start int) (string, []any) {
	// Empty IN lists match nothing rather than producing invalid SQL.
	if len(c.values) == 0 {
		return "1=0", nil
	}

	marks := make([]string, len(c.values))
	for i := range c.values {
		marks[i] = placeholder(start + i)
	}
	return c.column + " IN (" + strings.Join(marks, ", ") + ")", c.values
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) render(int) (string, []any) {
	return c.column + " IS NULL", nil
}

type exprCondition struct {
	expr string
	args []any
}

// Expr is the escape hatch for predicates the typed conditions cannot
// express. Each ? in expr binds one arg in order.
func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: append([]any(nil), args...)}
}

func (c exprCondition) render(start int) (string, []any) {
	return numberPlaceholders(c.expr, len(c.args), start), c.args
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)

	args := renderWhere(&buf, b.where, 1)

	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		buf.WriteString(" LIMIT ")
		buf.WriteString(strconv.Itoa(b.limit))
	}

	return buf.String(), args, nil
}

type setClause struct {
	column string
	value  any
	raw    string
}

type UpdateBuilder struct {
	table string
	sets  []setClause
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression, e.g. SetExpr("updated_at", "NOW()").
// The expression must not contain bind placeholders.
func (b *UpdateBuilder) SetExpr(column, expr string) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, raw: expr})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var buf strings.Builder
	buf.WriteString("UPDATE ")
	buf.WriteString(b.table)
	buf.WriteString(" SET ")

	args := make([]any, 0, len(b.sets)+len(b.where))
	for i, s := range b.sets {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(s.column)
		buf.WriteString(" = ")
		if s.raw != "" {
			buf.WriteString(s.raw)
			continue
		}
		buf.WriteString(placeholder(len(args) + 1))
		args = append(args, s.value)
	}

	args = append(args, renderWhere(&buf, b.where, len(args)+1)...)

	return buf.String(), args, nil
}

func renderWhere(buf *strings.Builder, conditions []Condition, start int) []any {
	if len(conditions) == 0 {
		return nil
	}

	var args []any
	buf.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		sql, condArgs := c.render(start + len(args))
		buf.WriteString(sql)
		args = append(args, condArgs...)
	}
	return args
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}

// numberPlaceholders replaces up to count ? marks with $n placeholders
// starting at start. Extra ? marks are left untouched.
func numberPlaceholders(expr string, count, start int) string {
	if count == 0 {
		return expr
	}

	var out strings.Builder
	used := 0
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && used < count {
			out.WriteString(placeholder(start + used))
			used++
			continue
		}
		out.WriteByte(expr[i])
	}
	return out.String()
}
