package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_Add(t *testing.T) {
	a := Money{Amount: 1000, Currency: "usd"}
	b := Money{Amount: 250, Currency: "usd"}

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, Money{Amount: 1250, Currency: "usd"}, sum)
}

func TestMoney_Add_ZeroValueIsIdentity(t *testing.T) {
	a := Money{Amount: 1000, Currency: "usd"}
	sum, err := a.Add(Money{})
	require.NoError(t, err)
	assert.Equal(t, a, sum)
}

func TestMoney_Add_CurrencyMismatch(t *testing.T) {
	a := Money{Amount: 1000, Currency: "usd"}
	b := Money{Amount: 1000, Currency: "eur"}
	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestMoney_Sub(t *testing.T) {
	a := Money{Amount: 1000, Currency: "usd"}
	b := Money{Amount: 250, Currency: "usd"}

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, Money{Amount: 750, Currency: "usd"}, diff)
}

func TestMoney_Mul(t *testing.T) {
	unit := Money{Amount: 500, Currency: "usd"}
	assert.Equal(t, Money{Amount: 1500, Currency: "usd"}, unit.Mul(3))
}

func TestMoney_IsZero(t *testing.T) {
	assert.True(t, Money{}.IsZero())
	assert.False(t, Money{Amount: 1}.IsZero())
}
