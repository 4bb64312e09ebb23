package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/saffron/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>POS
<DTPOSTED>20240122183000[0:GMT]
<TRNAMT>-18.40
<FITID>2024012201
<NAME>POS PURCHASE 01/22 BLUE BOTTLE
<MEMO>coffee beans
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		ofxData   string
		wantCount int
		wantErr   bool
	}{
		{name: "bank statement", ofxData: sampleBankOFX, wantCount: 4},
		{name: "credit card statement", ofxData: sampleCreditCardOFX, wantCount: 2},
		{name: "invalid data", ofxData: "not valid OFX", wantErr: true},
		{name: "empty input", ofxData: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observations, err := NewParser().Parse(context.Background(), strings.NewReader(tt.ofxData))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, observations, tt.wantCount)
		})
	}
}

func assertAmount(t *testing.T, want string, obs model.Observation) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(obs.Amount), "amount %s, want %s", obs.Amount, want)
}

func TestParse_BankObservations(t *testing.T) {
	observations, err := NewParser().Parse(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, observations, 4)

	starbucks := observations[0]
	assert.Equal(t, "2024011501", starbucks.ID)
	assert.Equal(t, "STARBUCKS STORE #1234", starbucks.Merchant)
	assert.Equal(t, "STARBUCKS STORE #1234", starbucks.Description)
	assertAmount(t, "25.5", starbucks)
	assert.Equal(t, time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC), starbucks.Date)

	wholeFoods := observations[1]
	assert.Equal(t, "Whole Foods Market", wholeFoods.Merchant)
	assertAmount(t, "125", wholeFoods)

	coffee := observations[2]
	assert.Equal(t, "BLUE BOTTLE", coffee.Merchant)
	assert.Equal(t, "POS PURCHASE 01/22 BLUE BOTTLE coffee beans", coffee.Description)
	assertAmount(t, "18.4", coffee)
	assert.True(t, coffee.HasTimeOfDay())

	check := observations[3]
	assert.Equal(t, "2024012501", check.ID)
	assert.Equal(t, "CHECK #1234", check.Merchant)
	assertAmount(t, "500", check)
}

func TestParse_CreditCardObservations(t *testing.T) {
	observations, err := NewParser().Parse(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, observations, 2)

	assert.Equal(t, "CC2024011001", observations[0].ID)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", observations[0].Merchant)
	assertAmount(t, "45.99", observations[0])

	assert.Equal(t, "NETFLIX.COM", observations[1].Merchant)
	assertAmount(t, "15", observations[1])
}

func TestParse_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().Parse(ctx, strings.NewReader(sampleBankOFX))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMerchantName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name string
		tx   ofxgo.Transaction
		want string
	}{
		{name: "remove POS prefix", tx: ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"}, want: "STARBUCKS"},
		{name: "remove DEBIT CARD prefix", tx: ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"}, want: "WHOLE FOODS"},
		{name: "remove date after prefix", tx: ofxgo.Transaction{Name: "CHECK CARD 03/14 SHELL OIL"}, want: "SHELL OIL"},
		{name: "keep clean name", tx: ofxgo.Transaction{Name: "NETFLIX.COM"}, want: "NETFLIX.COM"},
		{name: "trim whitespace", tx: ofxgo.Transaction{Name: "  AMAZON.COM  "}, want: "AMAZON.COM"},
		{name: "generic name uses memo", tx: ofxgo.Transaction{Name: "DEBIT", Memo: "City Water Dept"}, want: "City Water Dept"},
		{
			name: "payee wins",
			tx:   ofxgo.Transaction{Name: "POS 8812", Payee: &ofxgo.Payee{Name: "Corner Bakery"}},
			want: "Corner Bakery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.merchantName(tt.tx))
		})
	}
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "Portland, OR", location(&ofxgo.Payee{City: "Portland", State: "OR"}))
	assert.Equal(t, "OR", location(&ofxgo.Payee{State: "OR"}))
	assert.Empty(t, location(&ofxgo.Payee{}))
}

func TestAccounts(t *testing.T) {
	parser := NewParser()

	accounts, err := parser.Accounts(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = parser.Accounts(strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)

	_, err = parser.Accounts(strings.NewReader("garbage"))
	assert.Error(t, err)
}
