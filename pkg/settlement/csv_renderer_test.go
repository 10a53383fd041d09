package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvRendererImpl_Render(t *testing.T) {
	tests := []struct {
		name string
		view View
		want string
	}{
		{
			name: "empty view renders header and sum",
			view: View{},
			want: "Collector,Participant,Share,Paid,Outstanding,Capped\nSUM,,Rp 0,Rp 0,Rp 0,\n",
		},
		{
			name: "capped participant",
			view: View{
				Groups: []Group{{
					CollectorName: "Ayu",
					Balances: []Balance{
						{Name: "Dewi, Jr.", Due: d(100000), Paid: d(100000), Capped: true},
						{Name: "Eka", Due: d(1234500), Paid: d(0), Outstanding: d(1234500)},
					},
					TotalShare:       d(1334500),
					TotalPaid:        d(100000),
					TotalOutstanding: d(1234500),
				}},
				TotalShare:       d(1334500),
				TotalPaid:        d(100000),
				TotalOutstanding: d(1234500),
			},
			want: "Collector,Participant,Share,Paid,Outstanding,Capped\n" +
				"Ayu,\"Dewi, Jr.\",Rp 100.000,Rp 100.000,Rp 0,yes\n" +
				"Ayu,Eka,Rp 1.234.500,Rp 0,Rp 1.234.500,no\n" +
				"Ayu,Total,Rp 1.334.500,Rp 100.000,Rp 1.234.500,\n" +
				"SUM,,Rp 1.334.500,Rp 100.000,Rp 1.234.500,\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCsvRenderer().Render(tt.view)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
