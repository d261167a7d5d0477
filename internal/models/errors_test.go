package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	malformed := &MalformedInputError{Format: FormatCSV, Reason: "no rows", Err: io.ErrUnexpectedEOF}
	missing := &MissingColumnError{Role: RoleAmount, Headers: []string{"date", "memo"}}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"malformed", malformed, KindMalformedInput},
		{"wrapped malformed", fmt.Errorf("upload: %w", malformed), KindMalformedInput},
		{"missing column", missing, KindMissingColumn},
		{"other", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestMalformedInputError_Unwrap(t *testing.T) {
	err := fmt.Errorf("extract: %w", &MalformedInputError{Format: FormatPDF, Reason: "bad xref", Err: io.ErrUnexpectedEOF})

	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var target *MalformedInputError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, FormatPDF, target.Format)
	assert.Contains(t, err.Error(), "malformed pdf input: bad xref")
}

func TestMissingColumnError_Message(t *testing.T) {
	err := &MissingColumnError{Role: RoleAmount, Headers: []string{"Date", "Amt"}, Suggestion: "Amt"}
	assert.Equal(t, `no amount column found in headers [Date, Amt] (closest: "Amt")`, err.Error())
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.NotErrorIs(t, err, ErrMalformedInput)
}

func TestTransaction_DerivedFields(t *testing.T) {
	txn := Transaction{
		Date:        time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC),
		Amount:      decimal.RequireFromString("12.50"),
		Description: "Coffee",
		Row:         3,
	}
	assert.Equal(t, 2024, txn.Year())
	assert.Equal(t, 3, txn.MonthNumber())
	assert.Equal(t, "Mar", txn.MonthLabel())

	data, err := txn.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-09","amount":"12.5","description":"Coffee","year":2024,"monthNumber":3,"monthLabel":"Mar","row":3}`, string(data))
}

func TestRoleMapping(t *testing.T) {
	m := NewRoleMapping()
	_, ok := m.Column(RoleDate)
	assert.False(t, ok)
	assert.Equal(t, -1, m.Index(RoleDate))

	m.Assign(RoleAmount, 2)
	col, ok := m.Column(RoleAmount)
	assert.True(t, ok)
	assert.Equal(t, 2, col)
	assert.Equal(t, "amount=2 date=-1 description=-1", m.String())
}

func TestCell(t *testing.T) {
	row := []string{"a", "b"}
	assert.Equal(t, "b", Cell(row, 1))
	assert.Equal(t, "", Cell(row, 2))
	assert.Equal(t, "", Cell(row, -1))
}

func TestRoleMapping_JSON(t *testing.T) {
	m := NewRoleMapping()
	m.Assign(RoleDate, 0)
	m.Diagnostics = append(m.Diagnostics, Diagnostic{Kind: DiagnosticMissing, Role: RoleDescription, Message: "no description column"})

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"columns": {"amount": -1, "date": 0, "description": -1},
		"diagnostics": [{"kind": "missing", "role": "description", "message": "no description column"}]
	}`, string(data))
}
