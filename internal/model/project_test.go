package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLabel_FullForm(t *testing.T) {
	p := ProjectRecord{DisplayName: "PROJ-7700 | Smith, Victor | 100 Main St"}
	d := p.DecodeLabel()

	assert.Equal(t, "PROJ-7700", d.Number)
	assert.Equal(t, "Smith, Victor", d.CustomerName)
	assert.Equal(t, "Smith", d.LastName)
	assert.Equal(t, "Victor", d.FirstName)
	assert.Equal(t, "100 Main St", d.Address)
	assert.Equal(t, "100", d.StreetNumber)
}

func TestDecodeLabel_URLEncoded(t *testing.T) {
	p := ProjectRecord{DisplayName: "PROJ-1%20%7C%20Smith%2C%20Victor%20%7C%201%20Elm%20Ave"}
	d := p.DecodeLabel()

	assert.Equal(t, "PROJ-1", d.Number)
	assert.Equal(t, "Smith", d.LastName)
	assert.Equal(t, "1 Elm Ave", d.Address)
}

func TestDecodeLabel_TwoSegments(t *testing.T) {
	p := ProjectRecord{DisplayName: "Smith, Victor | 100 Main St"}
	d := p.DecodeLabel()

	assert.Empty(t, d.Number)
	assert.Equal(t, "Smith", d.LastName)
	assert.Equal(t, "100 Main St", d.Address)
}

func TestDecodeLabel_CustomerOnly(t *testing.T) {
	p := ProjectRecord{DisplayName: "Acme Builders"}
	d := p.DecodeLabel()

	assert.Equal(t, "Acme Builders", d.CustomerName)
	assert.Equal(t, "Acme Builders", d.LastName)
	assert.Empty(t, d.FirstName)
	assert.Empty(t, d.Address)
}

func TestDecodeLabel_NoStreetNumber(t *testing.T) {
	p := ProjectRecord{DisplayName: "PROJ-1 | Smith, V | Main St"}
	assert.Empty(t, p.DecodeLabel().StreetNumber)
}

func TestDecodeLabel_Empty(t *testing.T) {
	d := ProjectRecord{}.DecodeLabel()
	assert.Empty(t, d.CustomerName)
	assert.Empty(t, d.Number)
}
