package testutil

import (
	"time"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/notices"
)

// Date возвращает дату в UTC для фикстур.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Float64 возвращает указатель на значение.
func Float64(v float64) *float64 {
	return &v
}

// Int32 возвращает указатель на значение.
func Int32(v int32) *int32 {
	return &v
}

// SampleNotice собирает минимально полное каноническое извещение.
// Поля можно менять в тестах после создания.
func SampleNotice(docID string) *notices.Notice {
	return &notices.Notice{
		Document: notices.Document{
			DocID:           docID,
			Edition:         notices.StringPtr("2024123"),
			Version:         notices.StringPtr("R2.0.9"),
			PublicationDate: Date(2024, time.May, 2),
			DispatchDate:    Date(2024, time.April, 28),
			SourceCountry:   notices.StringPtr("DE"),
		},
		Buyer: notices.Organization{
			OfficialName: "Stadt Musterstadt",
			Town:         notices.StringPtr("Musterstadt"),
			PostalCode:   notices.StringPtr("12345"),
			CountryCode:  notices.StringPtr("DE"),
		},
		Contract: notices.Contract{
			Title:              "Lieferung von Schulmöbeln",
			MainCpvCode:        notices.StringPtr("39160000"),
			CpvCodes:           []notices.CodelistEntry{{Code: "39160000"}},
			ContractNatureCode: notices.StringPtr("supplies"),
			ProcedureType: &notices.CodelistEntry{
				Code:        "open",
				Description: notices.StringPtr("Open procedure"),
			},
		},
		Awards: []notices.Award{
			{
				AwardedValue:         Float64(125000.50),
				AwardedValueCurrency: notices.StringPtr("EUR"),
				TendersReceived:      Int32(4),
				AwardDate:            Date(2024, time.April, 15),
				Contractors: []notices.Organization{
					{
						OfficialName: "Möbelwerk GmbH",
						Town:         notices.StringPtr("Berlin"),
						CountryCode:  notices.StringPtr("DE"),
					},
				},
			},
		},
	}
}
