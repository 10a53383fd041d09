package settlement

import (
	"bytes"
	"encoding/csv"

	"github.com/tripkas/tripkas/internal/money"
	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	Render(view View) (string, error)
}

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

func (r *CsvRendererImpl) Render(view View) (string, error) {
	data := make([][]string, 0, len(view.Groups)*2+2)
	data = append(data, []string{"Collector", "Participant", "Share", "Paid", "Outstanding", "Capped"})
	for _, group := range view.Groups {
		for _, b := range group.Balances {
			data = append(data, []string{
				group.CollectorName,
				b.Name,
				money.FormatIDR(b.Due),
				money.FormatIDR(b.Paid),
				money.FormatIDR(b.Outstanding),
				yesNo(b.Capped),
			})
		}
		data = append(data, []string{
			group.CollectorName,
			"Total",
			money.FormatIDR(group.TotalShare),
			money.FormatIDR(group.TotalPaid),
			money.FormatIDR(group.TotalOutstanding),
			"",
		})
	}
	data = append(data, []string{
		"SUM",
		"",
		money.FormatIDR(view.TotalShare),
		money.FormatIDR(view.TotalPaid),
		money.FormatIDR(view.TotalOutstanding),
		"",
	})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
