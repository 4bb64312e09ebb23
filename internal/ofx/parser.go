// Package ofx reads OFX and QFX statement exports into observations for
// categorization.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// amountPrecision is the number of decimal places kept from OFX amounts.
const amountPrecision = 4

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix      = regexp.MustCompile(`^\d{2}/\d{2} `)
)

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Parser converts OFX statements into observations.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// normalize fixes formatting quirks common in bank exports.
func (p *Parser) normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

func (p *Parser) response(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.normalize(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// Parse reads every bank and credit card statement in the file. Amounts are
// reported as positive expense magnitudes.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) ([]model.Observation, error) {
	resp, err := p.response(reader)
	if err != nil {
		return nil, err
	}

	var (
		observations       []model.Observation
		bankStmts, ccStmts int
	)

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			observations = append(observations, p.convertAll(stmt.BankTranList.Transactions)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			observations = append(observations, p.convertAll(stmt.BankTranList.Transactions)...)
		}
	}

	slog.Info("Parsed OFX file",
		"observations", len(observations),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return observations, nil
}

func (p *Parser) convertAll(txns []ofxgo.Transaction) []model.Observation {
	out := make([]model.Observation, 0, len(txns))
	for _, tx := range txns {
		obs, err := p.convert(tx)
		if err != nil {
			slog.Warn("Skipping OFX transaction",
				"fitid", string(tx.FiTID),
				"error", err)
			continue
		}
		out = append(out, obs)
	}
	return out
}

func (p *Parser) convert(tx ofxgo.Transaction) (model.Observation, error) {
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(amountPrecision))
	if err != nil {
		return model.Observation{}, fmt.Errorf("invalid amount: %w", err)
	}

	obs := model.Observation{
		ID:          string(tx.FiTID),
		Date:        tx.DtPosted.Time.UTC(),
		Amount:      amount.Abs(),
		Merchant:    p.merchantName(tx),
		Description: description(tx),
	}
	if tx.Payee != nil {
		obs.Location = location(tx.Payee)
	}
	return obs, nil
}

// merchantName prefers PAYEE, then NAME with card-network prefixes removed,
// falling back to MEMO when NAME is generic.
func (p *Parser) merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(datePrefix.ReplaceAllString(name, ""))
}

func description(tx ofxgo.Transaction) string {
	name := strings.TrimSpace(string(tx.Name))
	memo := strings.TrimSpace(string(tx.Memo))
	switch {
	case memo == "" || strings.EqualFold(memo, name):
		return name
	case name == "":
		return memo
	}
	return name + " " + memo
}

func location(payee *ofxgo.Payee) string {
	var parts []string
	for _, s := range []ofxgo.String{payee.City, payee.State} {
		if v := strings.TrimSpace(string(s)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Accounts returns the sorted account IDs present in the file.
func (p *Parser) Accounts(reader io.Reader) ([]string, error) {
	resp, err := p.response(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
