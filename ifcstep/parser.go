package ifcstep

import (
	"fmt"
	"strconv"
	"strings"
)

// parseContent extracts the DATA; ... ENDSEC; section of a STEP physical
// file and parses every instance statement within it. The header section
// (ISO-10303-21; HEADER; ... ENDSEC;) is never inspected — nothing this
// tool reads lives there.
func parseContent(content string) (*Model, error) {
	dataStart := strings.Index(content, "DATA;")
	if dataStart < 0 {
		return nil, ErrMissingDataSection
	}
	body := content[dataStart+len("DATA;"):]
	if end := strings.LastIndex(body, "ENDSEC;"); end >= 0 {
		body = body[:end]
	}

	model := newModel()
	for _, stmt := range splitStatements(body) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || stmt[0] != '#' {
			continue
		}
		entity, err := parseStatement(stmt)
		if err != nil {
			return nil, fmt.Errorf("ifcstep: %w", err)
		}
		model.add(entity)
	}
	return model, nil
}

// splitStatements splits on ';' (the STEP record terminator), treating
// anything between single quotes as opaque so an embedded ';' in a string
// literal doesn't split a record.
func splitStatements(data string) []string {
	var stmts []string
	var sb strings.Builder
	inQuotes := false

	for i := 0; i < len(data); i++ {
		ch := data[i]
		switch {
		case ch == '\'':
			inQuotes = !inQuotes
			sb.WriteByte(ch)
		case ch == ';' && !inQuotes:
			stmts = append(stmts, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(ch)
		}
	}
	if sb.Len() > 0 {
		stmts = append(stmts, sb.String())
	}
	return stmts
}

// parseStatement parses one `#id=TYPE(args);`-shaped record (the
// trailing ';' already stripped by splitStatements).
func parseStatement(stmt string) (*Entity, error) {
	eq := strings.IndexByte(stmt, '=')
	if eq < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedStatement, stmt)
	}

	idPart := strings.TrimSpace(stmt[1:eq])
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return nil, fmt.Errorf("%w: bad instance label %q", ErrMalformedStatement, idPart)
	}

	rest := strings.TrimSpace(stmt[eq+1:])
	open := strings.IndexByte(rest, '(')
	if open < 0 || !strings.HasSuffix(rest, ")") {
		return nil, fmt.Errorf("%w: %s", ErrMalformedStatement, stmt)
	}

	typeName := strings.ToUpper(strings.TrimSpace(rest[:open]))
	argsStr := rest[open+1 : len(rest)-1]

	var args []Value
	for _, tok := range splitTopLevel(argsStr) {
		args = append(args, parseValue(tok))
	}

	return &Entity{ID: ID(id), Type: typeName, Args: args}, nil
}

// splitTopLevel splits a comma-separated argument list, respecting
// nested parentheses and quoted strings so that e.g. the inner commas of
// a list-valued argument don't produce extra top-level arguments.
func splitTopLevel(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var parts []string
	var sb strings.Builder
	depth := 0
	inQuotes := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\'':
			inQuotes = !inQuotes
			sb.WriteByte(ch)
		case inQuotes:
			sb.WriteByte(ch)
		case ch == '(':
			depth++
			sb.WriteByte(ch)
		case ch == ')':
			depth--
			sb.WriteByte(ch)
		case ch == ',' && depth == 0:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(ch)
		}
	}
	parts = append(parts, sb.String())
	return parts
}

// parseValue parses one STEP attribute token into a Value: null ($),
// derived (*), entity reference (#n), string ('...', with '' escaping a
// literal quote), enumeration (.NAME.), list ((...)), number, or a
// select-type wrapper (IDENTIFIER(value)).
func parseValue(tok string) Value {
	tok = strings.TrimSpace(tok)
	if tok == "" || tok == "$" || tok == "*" {
		return Value{Kind: KindNull}
	}

	switch tok[0] {
	case '#':
		if n, err := strconv.Atoi(tok[1:]); err == nil {
			return Value{Kind: KindRef, Ref: ID(n)}
		}
	case '\'':
		if len(tok) >= 2 && tok[len(tok)-1] == '\'' {
			unquoted := strings.ReplaceAll(tok[1:len(tok)-1], "''", "'")
			return Value{Kind: KindString, Str: unquoted}
		}
	case '.':
		return Value{Kind: KindEnum, Enum: strings.Trim(tok, ".")}
	case '(':
		if strings.HasSuffix(tok, ")") {
			inner := tok[1 : len(tok)-1]
			parts := splitTopLevel(inner)
			list := make([]Value, 0, len(parts))
			for _, p := range parts {
				list = append(list, parseValue(p))
			}
			return Value{Kind: KindList, List: list}
		}
	}

	if n, err := strconv.ParseFloat(tok, 64); err == nil {
		return Value{Kind: KindNumber, Num: n}
	}

	if open := strings.IndexByte(tok, '('); open > 0 && strings.HasSuffix(tok, ")") {
		name := tok[:open]
		inner := parseValue(tok[open+1 : len(tok)-1])
		return Value{Kind: KindTyped, TypeName: name, Inner: &inner}
	}

	return Value{Kind: KindString, Str: tok}
}
