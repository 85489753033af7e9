// Package notices описывает каноническую форму извещения о заключении
// контракта. Все парсеры диалектов TED обязаны выдавать именно эти структуры;
// слой загрузки в БД работает только с ними.
package notices

import "time"

// CodelistEntry — элемент закрытого кодового списка (CPV, тип процедуры,
// правовой тип заказчика): стабильный код плюс необязательное описание.
type CodelistEntry struct {
	Code        string
	Description *string // nil, если описание в источнике отсутствует
}

// Identifier — идентификатор организации (например SIRET, NIF, KVK).
type Identifier struct {
	Scheme     *string // схема идентификатора, если известна
	Identifier string
}

// Organization используется полиморфно: и как заказчик, и как подрядчик.
type Organization struct {
	OfficialName string // обязательное поле; пустая строка недопустима
	Address      *string
	Town         *string
	PostalCode   *string
	CountryCode  *string
	NutsCode     *string
	Identifiers  []Identifier
}

// Document — метаданные исходного извещения. DocID уникален глобально.
type Document struct {
	DocID                 string
	Edition               *string
	Version               *string
	ReceptionID           *string
	OfficialJournalRef    *string
	PublicationDate       *time.Time
	DispatchDate          *time.Time
	SourceCountry         *string
	ContactPoint          *string
	Phone                 *string
	Email                 *string
	URLGeneral            *string
	BuyerURL              *string
	BuyerAuthorityType    *CodelistEntry
	BuyerMainActivityCode *string
}

// Contract — предмет закупки; ровно один на извещение.
type Contract struct {
	Title                  string // обязательное поле
	ShortDescription       *string
	MainCpvCode            *string
	CpvCodes               []CodelistEntry // главный + дополнительные коды
	NutsCode               *string
	ContractNatureCode     *string        // канонический код eForms
	ProcedureType          *CodelistEntry // канонический код eForms
	Accelerated            bool           // ускоренная процедура (eForms BT-106)
	FrameworkAgreement     bool           // рамочное соглашение (BT-765)
	EuFunded               bool           // финансирование ЕС (BT-60)
	EstimatedValue         *float64       // оценка до заключения (BT-27)
	EstimatedValueCurrency *string
}

// Award — результат по одному лоту. Лоты без победителя парсеры отбрасывают.
type Award struct {
	AwardTitle           *string
	ContractNumber       *string
	AwardedValue         *float64
	AwardedValueCurrency *string
	TendersReceived      *int32
	AwardDate            *time.Time
	LotNumber            *string
	ContractStartDate    *time.Time
	ContractEndDate      *time.Time
	Contractors          []Organization
}

// Notice — итог разбора одного файла-извещения.
type Notice struct {
	Document Document
	Buyer    Organization
	Contract Contract
	Awards   []Award // минимум один
}

// StringPtr возвращает указатель на s, либо nil для пустой строки.
// Пустая после обрезки пробелов строка считается отсутствующим значением.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
