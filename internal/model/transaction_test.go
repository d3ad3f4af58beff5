package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionIsUnassigned(t *testing.T) {
	tests := []struct {
		categoryID string
		want       bool
	}{
		{UnassignedCategory, true},
		{"MIGROSKREUZ", false},
		{"", false},
	}
	for _, tt := range tests {
		txn := Transaction{CategoryID: tt.categoryID}
		assert.Equal(t, tt.want, txn.IsUnassigned(), "IsUnassigned(%q)", tt.categoryID)
	}
}
