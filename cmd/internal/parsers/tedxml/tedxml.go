// Package tedxml разбирает извещения legacy-семейства TED XML:
// варианты R2.0.7, R2.0.8 (форма CONTRACT_AWARD) и R2.0.9 (форма F03_2014).
//
// Форматы дат в TED 2.0:
//   - DATE_PUB, DS_DATE_DISPATCH: YYYYMMDD ("20110104");
//   - DATE_CONCLUSION_CONTRACT (R2.0.9): YYYY-MM-DD ("2014-01-06");
//   - CONTRACT_AWARD_DATE (R2.0.7/R2.0.8): вложенные <DAY>/<MONTH>/<YEAR>.
package tedxml

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/notices"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/parsers/codes"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/parsers/values"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/parsers/xmlutil"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

// Варианты схемы legacy-семейства.
const (
	VariantR207 = "R2.0.7"
	VariantR208 = "R2.0.8"
	VariantR209 = "R2.0.9"
	// VariantR207R208 используется при структурном определении, когда
	// schemaLocation не позволяет различить R2.0.7 и R2.0.8.
	VariantR207R208 = "R2.0.7/R2.0.8"
)

// Parse разбирает файл legacy-семейства в каноническое извещение.
// Отсутствие обязательных полей (издание, дата публикации, заказчик,
// контракт, награды) — это не ошибка, а непригодный файл: (nil, nil).
// Ошибка возвращается только при сбое ввода-вывода, нечитаемом XML или
// неоднозначной денежной строке.
func Parse(path string) (*notices.Notice, error) {
	doc, err := xmlutil.LoadDocument(path)
	if err != nil {
		return nil, err
	}

	root := xmlutil.RootElement(doc)
	if root == nil {
		return nil, fmt.Errorf("no root element in %s", path)
	}

	f := xmlutil.NewFinder(map[string]string{"t": root.NamespaceURI})
	variant := detectVariant(root, f)

	logger := logging.GetLogger()
	logger.Debugf("Processing %s as %s", filepath.Base(path), variant)

	document := extractDocument(root, f, path, variant)
	if document == nil {
		return nil, nil
	}

	buyer := extractBuyer(root, f, variant, document)
	if buyer == nil {
		logger.Debugf("No contracting body found in %s", filepath.Base(path))
		return nil, nil
	}

	contract, err := extractContract(root, f, variant)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		logger.Debugf("No contract info found in %s", filepath.Base(path))
		return nil, nil
	}

	awards, err := extractAwards(root, f, variant)
	if err != nil {
		return nil, err
	}
	if len(awards) == 0 {
		logger.Debugf("No awards found in %s", filepath.Base(path))
		return nil, nil
	}

	return &notices.Notice{
		Document: *document,
		Buyer:    *buyer,
		Contract: *contract,
		Awards:   awards,
	}, nil
}

// detectVariant определяет вариант схемы: сначала по xsi:schemaLocation,
// затем структурно (наличие F03_2014 либо CONTRACT_AWARD).
func detectVariant(root *xmlquery.Node, f *xmlutil.Finder) string {
	schemaLocation := root.SelectAttr("xsi:schemaLocation")
	if schemaLocation == "" {
		schemaLocation = root.SelectAttr("schemaLocation")
	}

	switch {
	case strings.Contains(schemaLocation, "R2.0.9"):
		return VariantR209
	case strings.Contains(schemaLocation, "R2.0.8"):
		return VariantR208
	case strings.Contains(schemaLocation, "R2.0.7"):
		return VariantR207
	}

	if f.One(root, ".//t:F03_2014") != nil {
		return VariantR209
	}
	if f.One(root, ".//t:CONTRACT_AWARD") != nil {
		return VariantR207R208
	}
	return "Unknown"
}

func extractDocument(root *xmlquery.Node, f *xmlutil.Finder, path, variant string) *notices.Document {
	logger := logging.GetLogger()
	name := filepath.Base(path)

	docID := strings.TrimSpace(root.SelectAttr("DOC_ID"))
	if docID == "" {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		docID = strings.ReplaceAll(stem, "_", "-")
	}

	edition := strings.TrimSpace(root.SelectAttr("EDITION"))
	if edition == "" {
		logger.Debugf("No edition found in %s", name)
		return nil
	}

	pubDateText := f.Text(root, ".//t:DATE_PUB")
	if pubDateText == nil {
		logger.Debugf("No publication date found in %s", name)
		return nil
	}
	pubDate := values.ParseDateYYYYMMDD(*pubDateText)
	if pubDate == nil {
		logger.Debugf("Could not parse publication date in %s", name)
		return nil
	}

	var dispatchDate *time.Time
	if dd := f.Text(root, ".//t:DS_DATE_DISPATCH"); dd != nil {
		dispatchDate = values.ParseDateYYYYMMDD(*dd)
	}

	return &notices.Document{
		DocID:              docID,
		Edition:            &edition,
		Version:            &variant,
		PublicationDate:    pubDate,
		DispatchDate:       dispatchDate,
		ReceptionID:        f.Text(root, ".//t:RECEPTION_ID"),
		OfficialJournalRef: f.Text(root, ".//t:NO_DOC_OJS"),
		SourceCountry:      f.Attr(root, ".//t:ISO_COUNTRY", "VALUE"),
	}
}

// extractBuyer извлекает заказчика и попутно заполняет контактные поля
// документа (телефон, e-mail, URL, правовой тип, основная деятельность).
func extractBuyer(root *xmlquery.Node, f *xmlutil.Finder, variant string, doc *notices.Document) *notices.Organization {
	if variant == VariantR209 {
		return extractBuyerR209(root, f, doc)
	}
	return extractBuyerR207(root, f, doc)
}

func extractBuyerR207(root *xmlquery.Node, f *xmlutil.Finder, doc *notices.Document) *notices.Organization {
	ca := f.One(root, ".//t:CA_CE_CONCESSIONAIRE_PROFILE")
	if ca == nil {
		return nil
	}

	doc.Phone = f.Text(ca, ".//t:PHONE")
	doc.Email = f.Text(ca, ".//t:E_MAIL")
	doc.URLGeneral = f.Text(root, ".//t:URL_GENERAL")
	doc.BuyerURL = f.Text(root, ".//t:URL_BUYER")
	if code := f.Attr(root, ".//t:AA_AUTHORITY_TYPE", "CODE"); code != nil {
		doc.BuyerAuthorityType = codes.NormalizeAuthorityType(*code)
	}
	doc.BuyerMainActivityCode = f.Attr(root, ".//t:MA_MAIN_ACTIVITIES", "CODE")

	return &notices.Organization{
		OfficialName: organisationName(ca, f),
		Address:      f.Text(ca, ".//t:ADDRESS"),
		Town:         f.Text(ca, ".//t:TOWN"),
		PostalCode:   f.Text(ca, ".//t:POSTAL_CODE"),
		CountryCode:  f.Attr(ca, ".//t:COUNTRY", "VALUE"),
		Identifiers:  nationalID(ca, f),
	}
}

func extractBuyerR209(root *xmlquery.Node, f *xmlutil.Finder, doc *notices.Document) *notices.Organization {
	ca := f.One(root, ".//t:F03_2014//t:CONTRACTING_BODY")
	if ca == nil {
		return nil
	}

	doc.ContactPoint = f.Text(ca, ".//t:CONTACT_POINT")
	doc.Phone = f.Text(ca, ".//t:PHONE")
	doc.Email = f.Text(ca, ".//t:E_MAIL")
	doc.URLGeneral = f.Text(ca, ".//t:URL_GENERAL")
	doc.BuyerURL = f.Text(ca, ".//t:URL_BUYER")
	if code := f.Attr(ca, ".//t:CA_TYPE", "VALUE"); code != nil {
		doc.BuyerAuthorityType = codes.NormalizeAuthorityType(*code)
	}
	doc.BuyerMainActivityCode = f.Attr(ca, ".//t:CA_ACTIVITY", "VALUE")

	// NUTS внутри адреса заказчика объявлен в отдельном пространстве имён.
	var nutsCode *string
	if addr := f.One(ca, ".//t:ADDRESS_CONTRACTING_BODY"); addr != nil {
		nutsCode = f.Attr(addr, ".//*[local-name()='NUTS']", "CODE")
	}

	officialName := ""
	if n := f.Text(ca, ".//t:OFFICIALNAME"); n != nil {
		officialName = *n
	}

	var identifiers []notices.Identifier
	if addr := f.One(ca, ".//t:ADDRESS_CONTRACTING_BODY"); addr != nil {
		identifiers = nationalID(addr, f)
	}

	return &notices.Organization{
		OfficialName: officialName,
		Address:      f.Text(ca, ".//t:ADDRESS"),
		Town:         f.Text(ca, ".//t:TOWN"),
		PostalCode:   f.Text(ca, ".//t:POSTAL_CODE"),
		CountryCode:  f.Attr(ca, ".//t:COUNTRY", "VALUE"),
		NutsCode:     nutsCode,
		Identifiers:  identifiers,
	}
}

// organisationName достаёт имя организации из ORGANISATION: в R2.0.8 оно
// вложено в OFFICIALNAME, в R2.0.7 лежит прямо в тексте ORGANISATION.
func organisationName(scope *xmlquery.Node, f *xmlutil.Finder) string {
	org := f.One(scope, ".//t:ORGANISATION")
	if org == nil {
		return ""
	}
	if n := f.Text(org, ".//t:OFFICIALNAME"); n != nil {
		return *n
	}
	if n := xmlutil.NodeText(org); n != nil {
		return *n
	}
	return ""
}

func nationalID(scope *xmlquery.Node, f *xmlutil.Finder) []notices.Identifier {
	id := f.Text(scope, ".//t:NATIONALID")
	if id == nil {
		return nil
	}
	return []notices.Identifier{{Identifier: *id}}
}

func extractContract(root *xmlquery.Node, f *xmlutil.Finder, variant string) (*notices.Contract, error) {
	if variant == VariantR209 {
		return extractContractR209(root, f)
	}
	return extractContractR207(root, f)
}

// cpvDescriptions собирает карту код CPV -> описание из ORIGINAL_CPV
// секции CODED_DATA_SECTION.
func cpvDescriptions(root *xmlquery.Node, f *xmlutil.Finder) map[string]string {
	descs := make(map[string]string)
	for _, elem := range f.All(root, ".//t:ORIGINAL_CPV") {
		code := strings.TrimSpace(elem.SelectAttr("CODE"))
		text := xmlutil.NodeText(elem)
		if code != "" && text != nil {
			descs[code] = *text
		}
	}
	return descs
}

func cpvEntry(code string, descs map[string]string) notices.CodelistEntry {
	entry := notices.CodelistEntry{Code: code}
	if desc, ok := descs[code]; ok {
		entry.Description = &desc
	}
	return entry
}

func extractContractR207(root *xmlquery.Node, f *xmlutil.Finder) (*notices.Contract, error) {
	title := ""
	if t := f.Text(root, ".//t:TITLE_CONTRACT"); t != nil {
		title = *t
	}

	descs := cpvDescriptions(root, f)
	var cpvCodes []notices.CodelistEntry

	mainCode := f.Attr(root, ".//t:CPV_MAIN//t:CPV_CODE", "CODE")
	if mainCode != nil {
		cpvCodes = append(cpvCodes, cpvEntry(*mainCode, descs))
	}
	for _, elem := range f.All(root, ".//t:CPV_ADDITIONAL//t:CPV_CODE") {
		if code := strings.TrimSpace(elem.SelectAttr("CODE")); code != "" {
			cpvCodes = append(cpvCodes, cpvEntry(code, descs))
		}
	}

	contract := &notices.Contract{
		Title:            title,
		ShortDescription: f.Text(root, ".//t:SHORT_CONTRACT_DESCRIPTION"),
		MainCpvCode:      mainCode,
		CpvCodes:         cpvCodes,
		NutsCode:         f.Attr(root, ".//t:LOCATION_NUTS//t:NUTS", "CODE"),
		EuFunded:         f.One(root, ".//t:RELATES_TO_EU_PROJECT_YES") != nil,
	}

	if natureCode := f.Attr(root, ".//t:NC_CONTRACT_NATURE", "CODE"); natureCode != nil {
		contract.ContractNatureCode = codes.NormalizeContractNature(*natureCode)
	}
	applyProcedure(contract, root, f)

	return contract, nil
}

func extractContractR209(root *xmlquery.Node, f *xmlutil.Finder) (*notices.Contract, error) {
	object := f.One(root, ".//t:F03_2014//t:OBJECT_CONTRACT")
	if object == nil {
		return nil, nil
	}

	title := ""
	if t := f.Text(object, ".//t:TITLE"); t != nil {
		title = *t
	}

	descs := cpvDescriptions(root, f)
	var cpvCodes []notices.CodelistEntry
	mainCode := f.Attr(object, ".//t:CPV_MAIN//t:CPV_CODE", "CODE")
	if mainCode != nil {
		cpvCodes = append(cpvCodes, cpvEntry(*mainCode, descs))
	}

	contract := &notices.Contract{
		Title:              title,
		ShortDescription:   f.Text(object, ".//t:SHORT_DESCR"),
		MainCpvCode:        mainCode,
		CpvCodes:           cpvCodes,
		NutsCode:           f.Attr(object, ".//t:OBJECT_DESCR//*[local-name()='NUTS']", "CODE"),
		FrameworkAgreement: f.One(object, ".//t:OBJECT_DESCR//t:FRAMEWORK") != nil,
		EuFunded:           f.One(object, ".//t:OBJECT_DESCR//t:EU_PROGR_RELATED") != nil,
	}

	if natureCode := f.Attr(object, ".//t:TYPE_CONTRACT", "CTYPE"); natureCode != nil {
		contract.ContractNatureCode = codes.NormalizeContractNature(*natureCode)
	}
	applyProcedure(contract, root, f)

	if estVal := f.One(object, ".//t:VAL_ESTIMATED_TOTAL"); estVal != nil {
		value, err := extractValueAmount(estVal)
		if err != nil {
			return nil, err
		}
		contract.EstimatedValue = value
		contract.EstimatedValueCurrency = xmlutil.NodeAttr(estVal, "CURRENCY")
	}

	return contract, nil
}

// applyProcedure читает PR_PROC из CODED_DATA_SECTION — он лежит в одном
// месте во всех вариантах legacy-семейства.
func applyProcedure(contract *notices.Contract, root *xmlquery.Node, f *xmlutil.Finder) {
	proc := f.One(root, ".//t:PR_PROC")
	if proc == nil {
		return
	}
	code := strings.TrimSpace(proc.SelectAttr("CODE"))
	description := ""
	if d := xmlutil.NodeText(proc); d != nil {
		description = *d
	}
	contract.ProcedureType, contract.Accelerated = codes.NormalizeProcedureType(code, description)
}

func extractAwards(root *xmlquery.Node, f *xmlutil.Finder, variant string) ([]notices.Award, error) {
	if variant == VariantR209 {
		return extractAwardsR209(root, f)
	}
	return extractAwardsR207(root, f)
}

func extractAwardsR207(root *xmlquery.Node, f *xmlutil.Finder) ([]notices.Award, error) {
	var awards []notices.Award

	for _, awardElem := range f.All(root, ".//t:AWARD_OF_CONTRACT") {
		// Лоты без победителя публикуются пустыми AWARD_OF_CONTRACT
		// (либо с одним шаблонным MORE_INFORMATION_TO_SUB_CONTRACTED).
		if f.One(awardElem, ".//t:ECONOMIC_OPERATOR_NAME_ADDRESS") == nil &&
			f.One(awardElem, ".//t:CONTRACT_VALUE_INFORMATION") == nil &&
			f.One(awardElem, ".//t:CONTRACT_NUMBER") == nil &&
			f.One(awardElem, ".//t:CONTRACT_AWARD_DATE") == nil {
			continue
		}

		valueElem := f.One(awardElem,
			".//t:CONTRACT_VALUE_INFORMATION//t:COSTS_RANGE_AND_CURRENCY_WITH_VAT_RATE//t:VALUE_COST")
		value, err := extractValueAmount(valueElem)
		if err != nil {
			return nil, err
		}

		award := notices.Award{
			ContractNumber:       f.Text(awardElem, ".//t:CONTRACT_NUMBER"),
			AwardTitle:           f.Text(awardElem, ".//t:CONTRACT_TITLE"),
			AwardedValue:         value,
			AwardedValueCurrency: f.Attr(awardElem, ".//t:CONTRACT_VALUE_INFORMATION//t:COSTS_RANGE_AND_CURRENCY_WITH_VAT_RATE", "CURRENCY"),
			LotNumber:            xmlutil.NodeAttr(awardElem, "ITEM"),
			AwardDate:            nestedAwardDate(awardElem, f),
			Contractors:          extractContractorsR207(awardElem, f),
		}
		if offers := f.Text(awardElem, ".//t:OFFERS_RECEIVED_NUMBER"); offers != nil {
			award.TendersReceived = values.ParseOptionalInt(*offers)
		}

		awards = append(awards, award)
	}

	return awards, nil
}

// nestedAwardDate собирает дату заключения из вложенных DAY/MONTH/YEAR.
func nestedAwardDate(awardElem *xmlquery.Node, f *xmlutil.Finder) *time.Time {
	dateElem := f.One(awardElem, ".//t:CONTRACT_AWARD_DATE")
	if dateElem == nil {
		return nil
	}
	day := f.Text(dateElem, ".//t:DAY")
	month := f.Text(dateElem, ".//t:MONTH")
	year := f.Text(dateElem, ".//t:YEAR")
	if day == nil || month == nil || year == nil {
		return nil
	}

	y, errY := strconv.Atoi(*year)
	m, errM := strconv.Atoi(*month)
	d, errD := strconv.Atoi(*day)
	if errY != nil || errM != nil || errD != nil {
		return nil
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return nil
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date нормализует переполнение (31 февраля -> 2 марта);
	// такие даты считаем мусором.
	if t.Day() != d || t.Month() != time.Month(m) {
		return nil
	}
	return &t
}

func extractAwardsR209(root *xmlquery.Node, f *xmlutil.Finder) ([]notices.Award, error) {
	var awards []notices.Award

	for _, awardElem := range f.All(root, ".//t:F03_2014//t:AWARD_CONTRACT") {
		decision := f.One(awardElem, ".//t:AWARDED_CONTRACT")
		if decision == nil {
			continue
		}

		valueElem := f.One(decision, ".//t:VAL_TOTAL")
		value, err := extractValueAmount(valueElem)
		if err != nil {
			return nil, err
		}

		award := notices.Award{
			ContractNumber:       f.Text(awardElem, ".//t:CONTRACT_NO"),
			AwardTitle:           f.Text(awardElem, ".//t:TITLE"),
			AwardedValue:         value,
			AwardedValueCurrency: xmlutil.NodeAttr(valueElem, "CURRENCY"),
			LotNumber:            xmlutil.NodeAttr(awardElem, "ITEM"),
			Contractors:          extractContractorsR209(decision, f),
		}
		if dateText := f.Text(decision, ".//t:DATE_CONCLUSION_CONTRACT"); dateText != nil {
			award.AwardDate = values.ParseDateISO(*dateText)
		}
		if offers := f.Text(decision, ".//t:NB_TENDERS_RECEIVED"); offers != nil {
			award.TendersReceived = values.ParseOptionalInt(*offers)
		}

		awards = append(awards, award)
	}

	return awards, nil
}

func extractContractorsR207(awardElem *xmlquery.Node, f *xmlutil.Finder) []notices.Organization {
	var contractors []notices.Organization

	for _, elem := range f.All(awardElem, ".//t:ECONOMIC_OPERATOR_NAME_ADDRESS") {
		contactData := f.One(elem, ".//t:CONTACT_DATA_WITHOUT_RESPONSIBLE_NAME")
		if contactData == nil {
			continue
		}

		contractors = append(contractors, notices.Organization{
			OfficialName: organisationName(contactData, f),
			Address:      f.Text(contactData, ".//t:ADDRESS"),
			Town:         f.Text(contactData, ".//t:TOWN"),
			PostalCode:   f.Text(contactData, ".//t:POSTAL_CODE"),
			CountryCode:  f.Attr(contactData, ".//t:COUNTRY", "VALUE"),
			Identifiers:  nationalID(contactData, f),
		})
	}

	return contractors
}

func extractContractorsR209(decision *xmlquery.Node, f *xmlutil.Finder) []notices.Organization {
	var contractors []notices.Organization

	for _, elem := range f.All(decision, ".//t:CONTRACTOR") {
		officialName := ""
		if n := f.Text(elem, ".//t:OFFICIALNAME"); n != nil {
			officialName = *n
		}

		contractors = append(contractors, notices.Organization{
			OfficialName: officialName,
			Address:      f.Text(elem, ".//t:ADDRESS"),
			Town:         f.Text(elem, ".//t:TOWN"),
			PostalCode:   f.Text(elem, ".//t:POSTAL_CODE"),
			CountryCode:  f.Attr(elem, ".//t:COUNTRY", "VALUE"),
			NutsCode:     f.Attr(elem, ".//*[local-name()='NUTS']", "CODE"),
			Identifiers:  nationalID(elem, f),
		})
	}

	return contractors
}

// extractValueAmount читает денежную сумму из текста узла
// (VALUE_COST в R2.0.7/R2.0.8, VAL_TOTAL и VAL_ESTIMATED_TOTAL в R2.0.9).
func extractValueAmount(valueElem *xmlquery.Node) (*float64, error) {
	text := xmlutil.NodeText(valueElem)
	if text == nil {
		return nil, nil
	}
	return values.ParseMonetary(*text, "awarded_value")
}
