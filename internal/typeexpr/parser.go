package typeexpr

import (
	"multrait/internal/diag"
	"multrait/internal/lexer"
	"multrait/internal/source"
	"multrait/internal/token"
	"multrait/internal/types"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Query — один разобранный запрос `type '*' type ';'`.
// Операнды уже интернированы, спаны хранятся для диагностик резолвера.
type Query struct {
	Left      types.TypeID
	Right     types.TypeID
	LeftSpan  source.Span
	RightSpan source.Span
	Span      source.Span
}

type Result struct {
	Queries []Query
	Bag     *diag.Bag
}

// Parser — состояние разбора на один файл
type Parser struct {
	lx       *lexer.Lexer
	types    *types.Interner
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseQueries — входная точка для разбора файла запросов.
// Требует уже созданный lexer (на основе source.File).
func ParseQueries(lx *lexer.Lexer, typesIn *types.Interner, opts Options) Result {
	p := Parser{
		lx:       lx,
		types:    typesIn,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	var queries []Query
	for !p.at(token.EOF) {
		q, ok := p.parseQuery(true)
		if !ok {
			p.resyncQuery()
			continue
		}
		queries = append(queries, q)
	}

	var bag *diag.Bag
	if br, ok := opts.Reporter.(*diag.BagReporter); ok {
		bag = br.Bag
	}
	return Result{Queries: queries, Bag: bag}
}

// ParseQuery разбирает ровно один запрос, например из argv.
// Завершающая ';' не обязательна, но после запроса не должно быть хвоста.
func ParseQuery(lx *lexer.Lexer, typesIn *types.Interner, opts Options) (Query, bool) {
	p := Parser{
		lx:       lx,
		types:    typesIn,
		opts:     opts,
		lastSpan: lx.EmptySpan(),
	}

	if p.at(token.EOF) {
		p.err(diag.ParseEmptyQuery, "empty query")
		return Query{}, false
	}
	q, ok := p.parseQuery(false)
	if !ok {
		return Query{}, false
	}
	if !p.at(token.EOF) {
		p.err(diag.ParseTrailingInput, "unexpected input after query")
		return Query{}, false
	}
	return q, true
}

// parseQuery — `type '*' type ';'`. При needSemi=false завершающая ';'
// съедается, если есть, но не требуется.
func (p *Parser) parseQuery(needSemi bool) (Query, bool) {
	startSpan := p.lx.Peek().Span

	if p.at(token.Semicolon) {
		p.err(diag.ParseEmptyQuery, "empty query")
		p.advance()
		return Query{}, false
	}

	left, leftSpan, ok := p.parseType(false)
	if !ok {
		return Query{}, false
	}

	if _, ok := p.expect(token.Star, diag.ParseExpectStar, "expected '*' between operands"); !ok {
		return Query{}, false
	}

	right, rightSpan, ok := p.parseType(false)
	if !ok {
		return Query{}, false
	}

	end := p.lastSpan
	if needSemi {
		semiTok, ok := p.expect(token.Semicolon, diag.ParseExpectSemi, "expected ';' after query")
		if !ok {
			return Query{}, false
		}
		end = semiTok.Span
	} else if p.at(token.Semicolon) {
		end = p.advance().Span
	}

	return Query{
		Left:      left,
		Right:     right,
		LeftSpan:  leftSpan,
		RightSpan: rightSpan,
		Span:      startSpan.Cover(end),
	}, true
}

// resyncQuery — восстановление после ошибки: прокручиваем до ';' или EOF,
// найденную ';' съедаем.
func (p *Parser) resyncQuery() {
	for !p.at_or(token.Semicolon, token.EOF) {
		p.advance()
	}
	if p.at(token.Semicolon) {
		p.advance()
	}
}

func lexerForFile(file *source.File, reporter diag.Reporter) *lexer.Lexer {
	return lexer.New(file, lexer.Options{Reporter: reporter})
}
