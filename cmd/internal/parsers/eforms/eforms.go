// Package eforms разбирает извещения eForms UBL ContractAwardNotice
// (стандарт ЕС с 2024 года, публикации 2025+).
//
// В отличие от legacy-семейства, eForms связывает части извещения перекрёстными
// ссылками по идентификаторам: LotResult ссылается на LotTender (значение),
// SettledContract (номер контракта) и через TenderingParty на организации.
//
// Даты eForms несут зональное смещение: "2025-01-02+01:00", "2024-12-30Z".
package eforms

import (
	"fmt"
	"path/filepath"
	"regexp"
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

// Version — значение поля version документа для этого диалекта.
const Version = "eForms-UBL"

// Namespaces — фиксированная карта пространств имён eForms UBL.
var Namespaces = map[string]string{
	"can":   "urn:oasis:names:specification:ubl:schema:xsd:ContractAwardNotice-2",
	"cac":   "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2",
	"cbc":   "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2",
	"efac":  "http://data.europa.eu/p27/eforms-ubl-extension-aggregate-components/1",
	"efbc":  "http://data.europa.eu/p27/eforms-ubl-extension-basic-components/1",
	"efext": "http://data.europa.eu/p27/eforms-ubl-extensions/1",
	"ext":   "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2",
}

// Options настраивает парсер.
type Options struct {
	// MinAwardDateYear отсекает даты-заглушки в cac:TenderResult
	// (издатели ставят "2000-01-01", когда дата неизвестна).
	MinAwardDateYear int
}

// DefaultOptions — настройки по умолчанию.
func DefaultOptions() Options {
	return Options{MinAwardDateYear: 2005}
}

var reDocIDYearSuffix = regexp.MustCompile(`_(\d{4})$`)

// Parse разбирает файл eForms UBL в каноническое извещение с настройками
// по умолчанию.
func Parse(path string) (*notices.Notice, error) {
	return ParseWithOptions(path, DefaultOptions())
}

// ParseWithOptions разбирает файл eForms UBL. Семантика возврата та же, что
// у tedxml.Parse: (nil, nil) для непригодного файла, ошибка для сбоя разбора.
func ParseWithOptions(path string, opts Options) (*notices.Notice, error) {
	doc, err := xmlutil.LoadDocument(path)
	if err != nil {
		return nil, err
	}

	root := xmlutil.RootElement(doc)
	if root == nil {
		return nil, fmt.Errorf("no root element in %s", path)
	}

	f := xmlutil.NewFinder(Namespaces)
	logger := logging.GetLogger()

	document := extractDocument(root, f, path)
	if document == nil {
		return nil, nil
	}

	buyer := extractBuyer(root, f, document)
	if buyer == nil {
		logger.Debugf("No contracting body found in %s", filepath.Base(path))
		return nil, nil
	}

	contract, err := extractContract(root, f)
	if err != nil {
		return nil, err
	}

	awards, err := extractAwards(root, f, opts)
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

func extractDocument(root *xmlquery.Node, f *xmlutil.Finder, path string) *notices.Document {
	logger := logging.GetLogger()
	name := filepath.Base(path)

	// Идентификатор документа берётся из имени файла:
	// "000123_2024" нормализуется в "000123-2024".
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	docID := reDocIDYearSuffix.ReplaceAllString(stem, "-$1")

	pubDateText := f.Text(root, ".//efac:Publication/efbc:PublicationDate")
	if pubDateText == nil {
		pubDateText = f.Text(root, ".//cbc:IssueDate")
	}
	if pubDateText == nil {
		pubDateText = f.Text(root, ".//efac:SettledContract/cbc:IssueDate")
	}
	if pubDateText == nil {
		pubDateText = f.Text(root, ".//cac:ContractAwardNotice/cbc:IssueDate")
	}
	if pubDateText == nil {
		logger.Errorf("No publication date found in eForms document %s", name)
		return nil
	}

	pubDate := values.ParseDateISOOffset(*pubDateText)
	if pubDate == nil {
		logger.Debugf("Could not parse publication date in %s", name)
		return nil
	}

	country := f.Text(root, ".//cac:Country/cbc:IdentificationCode")

	// Ссылка на Официальный журнал и издание восстанавливаются из даты:
	// "2025/S 002-000123-2025".
	year := pubDate.Year()
	dayOfYear := pubDate.YearDay()
	officialRef := fmt.Sprintf("%d/S %03d-%s", year, dayOfYear, docID)
	edition := fmt.Sprintf("%d%03d", year, dayOfYear)
	version := Version

	return &notices.Document{
		DocID:              docID,
		Edition:            &edition,
		Version:            &version,
		OfficialJournalRef: &officialRef,
		PublicationDate:    pubDate,
		DispatchDate:       pubDate,
		SourceCountry:      country,
	}
}

// extractBuyer находит организацию-заказчика: по ссылке из ContractingParty,
// либо, если ссылки нет, берёт первую организацию из efac:Organizations.
func extractBuyer(root *xmlquery.Node, f *xmlutil.Finder, doc *notices.Document) *notices.Organization {
	contractingPartyID := f.Text(root,
		".//cac:ContractingParty/cac:Party/cac:PartyIdentification/cbc:ID")

	var company *xmlquery.Node
	orgs := f.All(root, ".//efac:Organizations/efac:Organization")
	if contractingPartyID == nil {
		if len(orgs) > 0 {
			company = f.One(orgs[0], ".//efac:Company")
		}
	} else {
		for _, org := range orgs {
			c := f.One(org, ".//efac:Company")
			if c == nil {
				continue
			}
			orgID := f.Text(c, ".//cac:PartyIdentification/cbc:ID")
			if orgID != nil && *orgID == *contractingPartyID {
				company = c
				break
			}
		}
	}
	if company == nil {
		return nil
	}

	doc.Phone = f.Text(company, ".//cac:Contact/cbc:Telephone")
	doc.Email = f.Text(company, ".//cac:Contact/cbc:ElectronicMail")
	doc.URLGeneral = f.Text(company, ".//cbc:WebsiteURI")

	return companyToOrganization(company, f)
}

// companyToOrganization переводит efac:Company в каноническую организацию.
// Возвращает nil, если у компании нет имени.
func companyToOrganization(company *xmlquery.Node, f *xmlutil.Finder) *notices.Organization {
	name := f.Text(company, ".//cac:PartyName/cbc:Name")
	if name == nil {
		return nil
	}

	var identifiers []notices.Identifier
	if companyID := f.One(company, ".//cac:PartyLegalEntity/cbc:CompanyID"); companyID != nil {
		if id := xmlutil.NodeText(companyID); id != nil {
			if schemeID := xmlutil.NodeAttr(companyID, "schemeID"); schemeID != nil {
				logging.GetLogger().Warnf(
					"CompanyID has schemeID=%q (not part of eForms SDK), value=%q",
					*schemeID, *id)
			}
			identifiers = append(identifiers, notices.Identifier{
				Scheme:     xmlutil.NodeAttr(companyID, "schemeName"),
				Identifier: *id,
			})
		}
	}

	return &notices.Organization{
		OfficialName: *name,
		Address:      f.Text(company, ".//cac:PostalAddress/cbc:StreetName"),
		Town:         f.Text(company, ".//cac:PostalAddress/cbc:CityName"),
		PostalCode:   f.Text(company, ".//cac:PostalAddress/cbc:PostalZone"),
		CountryCode:  f.Text(company, ".//cac:PostalAddress/cac:Country/cbc:IdentificationCode"),
		NutsCode:     f.Text(company, ".//cac:PostalAddress/cbc:CountrySubentityCode"),
		Identifiers:  identifiers,
	}
}

func extractContract(root *xmlquery.Node, f *xmlutil.Finder) (*notices.Contract, error) {
	title := ""
	if t := f.Text(root, ".//efac:SettledContract/cbc:Title"); t != nil {
		title = *t
	}

	// Коды CPV берутся с верхнего уровня ProcurementProject (прямой потомок
	// корня), лотовые дубли не собираются.
	var cpvCodes []notices.CodelistEntry
	mainCode := f.Text(root,
		"./cac:ProcurementProject/cac:MainCommodityClassification/cbc:ItemClassificationCode")
	if mainCode != nil {
		cpvCodes = append(cpvCodes, notices.CodelistEntry{Code: *mainCode})
	}
	for _, elem := range f.All(root,
		"./cac:ProcurementProject/cac:AdditionalCommodityClassification/cbc:ItemClassificationCode") {
		if code := xmlutil.NodeText(elem); code != nil {
			cpvCodes = append(cpvCodes, notices.CodelistEntry{Code: *code})
		}
	}

	nutsCode := f.Text(root,
		".//cac:ProcurementProjectLot//cac:RealizedLocation//cbc:CountrySubentityCode")
	if nutsCode == nil {
		nutsCode = f.Text(root,
			".//cac:ProcurementProject/cac:RealizedLocation//cbc:CountrySubentityCode")
	}

	contract := &notices.Contract{
		Title:            title,
		ShortDescription: notices.StringPtr(title),
		MainCpvCode:      mainCode,
		CpvCodes:         cpvCodes,
		NutsCode:         nutsCode,
	}

	if nature := f.Text(root, ".//cac:ProcurementProject/cbc:ProcurementTypeCode"); nature != nil {
		contract.ContractNatureCode = codes.NormalizeContractNature(*nature)
	}

	procCode := ""
	if p := f.Text(root, ".//cac:TenderingProcess/cbc:ProcedureCode"); p != nil {
		procCode = *p
	}
	contract.ProcedureType, contract.Accelerated = codes.NormalizeProcedureType(procCode, "")

	// BT-106: в eForms "ускоренная" — отдельный булев признак.
	if !contract.Accelerated {
		accel := f.Text(root,
			".//cac:TenderingProcess/cac:ProcessJustification/cbc:ProcessReasonCode[@listName='accelerated-procedure']")
		contract.Accelerated = accel != nil && *accel == "true"
	}

	// BT-27: оценка стоимости с уровня лота.
	if estElem := f.One(root,
		".//cac:ProcurementProjectLot/cac:ProcurementProject/cac:RequestedTenderTotal/cbc:EstimatedOverallContractAmount"); estElem != nil {
		if text := xmlutil.NodeText(estElem); text != nil {
			if v, err := strconv.ParseFloat(*text, 64); err == nil {
				contract.EstimatedValue = &v
				contract.EstimatedValueCurrency = xmlutil.NodeAttr(estElem, "currencyID")
			}
		}
	}

	// BT-765: рамочное соглашение.
	if fw := f.Text(root,
		".//cac:ProcurementProjectLot//cbc:ContractingSystemTypeCode[@listName='framework-agreement']"); fw != nil {
		contract.FrameworkAgreement = *fw != "none"
	}

	// BT-60: финансирование ЕС.
	if eu := f.Text(root,
		".//cac:ProcurementProjectLot//cbc:FundingProgramCode[@listName='eu-funded']"); eu != nil {
		contract.EuFunded = *eu == "eu-funds"
	}

	return contract, nil
}

type lotPeriod struct {
	start *time.Time
	end   *time.Time
}

func extractAwards(root *xmlquery.Node, f *xmlutil.Finder, opts Options) ([]notices.Award, error) {
	var awards []notices.Award

	// Карта организаций: id -> efac:Company.
	orgLookup := make(map[string]*xmlquery.Node)
	for _, org := range f.All(root, ".//efac:Organizations/efac:Organization") {
		company := f.One(org, ".//efac:Company")
		if company == nil {
			continue
		}
		if orgID := f.Text(company, ".//cac:PartyIdentification/cbc:ID"); orgID != nil {
			orgLookup[*orgID] = company
		}
	}

	// Карты братских элементов NoticeResult.
	lotTenders := make(map[string]*xmlquery.Node)
	for _, lt := range f.All(root, ".//efac:NoticeResult/efac:LotTender") {
		if id := f.Text(lt, "cbc:ID"); id != nil {
			lotTenders[*id] = lt
		}
	}
	settledContracts := make(map[string]*xmlquery.Node)
	for _, sc := range f.All(root, ".//efac:NoticeResult/efac:SettledContract") {
		if id := f.Text(sc, "cbc:ID"); id != nil {
			settledContracts[*id] = sc
		}
	}
	tenderingParties := make(map[string]*xmlquery.Node)
	for _, tp := range f.All(root, ".//efac:NoticeResult/efac:TenderingParty") {
		if id := f.Text(tp, "cbc:ID"); id != nil {
			tenderingParties[*id] = tp
		}
	}

	// Срок исполнения контракта берётся из PlannedPeriod лота.
	lotPeriods := make(map[string]lotPeriod)
	for _, lot := range f.All(root, ".//cac:ProcurementProjectLot") {
		lotID := f.Text(lot, "cbc:ID")
		if lotID == nil {
			continue
		}
		var p lotPeriod
		if start := f.Text(lot, ".//cac:PlannedPeriod/cbc:StartDate"); start != nil {
			p.start = values.ParseDateISOOffset(*start)
		}
		if end := f.Text(lot, ".//cac:PlannedPeriod/cbc:EndDate"); end != nil {
			p.end = values.ParseDateISOOffset(*end)
		}
		lotPeriods[*lotID] = p
	}

	// Дата заключения общая на документ (cac:TenderResult).
	var awardDate *time.Time
	if text := f.Text(root, ".//cac:TenderResult/cbc:AwardDate"); text != nil {
		if parsed := values.ParseDateISOOffset(*text); parsed != nil && parsed.Year() >= opts.MinAwardDateYear {
			awardDate = parsed
		}
	}

	for _, lotResult := range f.All(root, ".//efac:LotResult") {
		award := notices.Award{
			AwardDate: awardDate,
			LotNumber: f.Text(lotResult, "efac:TenderLot/cbc:ID"),
		}

		var partyID *string
		if tenderID := f.Text(lotResult, "efac:LotTender/cbc:ID"); tenderID != nil {
			if lotTender, ok := lotTenders[*tenderID]; ok {
				if amountElem := f.One(lotTender, "cac:LegalMonetaryTotal/cbc:PayableAmount"); amountElem != nil {
					if text := xmlutil.NodeText(amountElem); text != nil {
						v, err := strconv.ParseFloat(*text, 64)
						if err != nil {
							return nil, fmt.Errorf("invalid awarded value %q: %w", *text, err)
						}
						award.AwardedValue = &v
						award.AwardedValueCurrency = xmlutil.NodeAttr(amountElem, "currencyID")
					}
				}
				partyID = f.Text(lotTender, "efac:TenderingParty/cbc:ID")
			}
		}

		if contractID := f.Text(lotResult, "efac:SettledContract/cbc:ID"); contractID != nil {
			if sc, ok := settledContracts[*contractID]; ok {
				award.AwardTitle = f.Text(sc, "cbc:Title")
				award.ContractNumber = f.Text(sc, "efac:ContractReference/cbc:ID")
			}
		}

		if stats := f.Text(lotResult,
			"efac:ReceivedSubmissionsStatistics[efbc:StatisticsCode='tenders']/efbc:StatisticsNumeric"); stats != nil {
			award.TendersReceived = values.ParseOptionalInt(*stats)
		}

		// TenderingParty -> Tenderer -> организации-подрядчики.
		if partyID != nil {
			if tp, ok := tenderingParties[*partyID]; ok {
				for _, tenderer := range f.All(tp, "efac:Tenderer/cbc:ID") {
					orgID := xmlutil.NodeText(tenderer)
					if orgID == nil {
						continue
					}
					if company, ok := orgLookup[*orgID]; ok {
						if contractor := companyToOrganization(company, f); contractor != nil {
							award.Contractors = append(award.Contractors, *contractor)
						}
					}
				}
			}
		}

		if award.LotNumber != nil {
			if p, ok := lotPeriods[*award.LotNumber]; ok {
				award.ContractStartDate = p.start
				award.ContractEndDate = p.end
			}
		}

		awards = append(awards, award)
	}

	return awards, nil
}
