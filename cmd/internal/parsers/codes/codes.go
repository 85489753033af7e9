// Package codes нормализует кодированные значения TED (тип процедуры,
// правовой тип заказчика, предмет контракта) к каноническим кодам eForms
// (строчные буквы, дефисы).
//
// Коды TED v2 отображаются вперёд на эквиваленты eForms по официальным
// таблицам OP-TED/ted-xml-data-converter (xslt/other-mappings.xml).
// Цепочка отображения трёхступенчатая:
//  1. старые числовые/буквенные коды R2.0.7/R2.0.8 — через *_CODE_MAP;
//  2. канонические коды TED v2 R2.0.9 (верхний регистр) — через tedV2*;
//  3. известные коды eForms проходят как есть.
//
// Неизвестный код пишется в лог как warning и превращается в nil.
package codes

import (
	"github.com/zhukovvlad/tedawards-go/cmd/internal/notices"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

// procedureMapping — результат отображения кода типа процедуры.
// В eForms "ускоренная" — отдельный булев флаг (BT-106), а не тип процедуры:
// конвертер отображает ACCELERATED_* на базовый тип с accelerated=true.
type procedureMapping struct {
	code        string // "" — код явно неотображаем
	accelerated bool
}

// Старые коды типа процедуры (R2.0.7/R2.0.8 PR_PROC CODE), проверено
// эмпирически на файлах F03_2014 с двойной кодировкой. Коды "B" и "4"
// оба отображаются на neg-w-call — это всегда была одна и та же процедура.
var procedureTypeCodeMap = map[string]procedureMapping{
	"1": {"open", false},
	"2": {"restricted", false},
	"3": {"restricted", true},
	"4": {"neg-w-call", false},
	"6": {"neg-w-call", true},
	"9": {"", false}, // "Not applicable"
	"A": {"", false}, // "Direct awards" (MOVE/Reg 1370/2007, неконвертируемо)
	"B": {"neg-w-call", false},
	"C": {"comp-dial", false},
	"G": {"innovation", false},
	"T": {"neg-wo-call", false},
	"V": {"neg-wo-call", false},
	"N": {"", false},
	"Z": {"", false},
}

// Канонические коды TED v2 R2.0.9 (значения PR_PROC CODE / имена PT_*).
var tedV2ProcedureToCanonical = map[string]procedureMapping{
	"OPEN":                                  {"open", false},
	"RESTRICTED":                            {"restricted", false},
	"ACCELERATED_RESTRICTED":                {"restricted", true},
	"COMPETITIVE_NEGOTIATION":               {"neg-w-call", false},
	"NEGOTIATED_WITH_COMPETITION":           {"neg-w-call", false},
	"ACCELERATED_NEGOTIATED":                {"neg-w-call", true},
	"COMPETITIVE_DIALOGUE":                  {"comp-dial", false},
	"INNOVATION_PARTNERSHIP":                {"innovation", false},
	"AWARD_CONTRACT_WITHOUT_CALL":           {"neg-wo-call", false},
	"NEGOTIATED_WITH_PRIOR_CALL":            {"neg-w-call", false},
	"AWARD_CONTRACT_WITH_PRIOR_PUBLICATION": {"neg-w-call", false},
	"AWARD_CONTRACT_WITHOUT_PUBLICATION":    {"neg-wo-call", false},
	"NEGOTIATED_WITHOUT_PUBLICATION":        {"neg-wo-call", false},
	"INVOLVING_NEGOTIATION":                 {"", false}, // в конвертере — UNKNOWN
}

// Описания кодов типа процедуры (codelist procurement-procedure-type).
var procedureTypeDescriptions = map[string]string{
	"open":        "Open procedure",
	"restricted":  "Restricted procedure",
	"neg-w-call":  "Negotiated with prior call for competition",
	"comp-dial":   "Competitive dialogue",
	"innovation":  "Innovation partnership",
	"neg-wo-call": "Negotiated without prior call for competition",
	"oth-single":  "Other single stage procedure",
	"oth-mult":    "Other multiple stage procedure",
	"comp-tend":   "Competitive tendering (Regulation 1370/2007)",
}

// Старые коды правового типа заказчика (R2.0.7/R2.0.8 CODED_DATA_SECTION).
// MINISTRY и NATIONAL_AGENCY оба отображаются на cga по официальному
// конвертеру. Код 4 ("Utilities entity") относится к buyer-contracting-type,
// а не buyer-legal-type; коды 8 ("Other") и Z ("Not specified") эквивалента
// в eForms не имеют.
var authorityTypeCodeMap = map[string]string{
	"1": "cga",
	"3": "ra",
	"4": "",
	"5": "eu-ins-bod-ag",
	"6": "body-pl",
	"8": "",
	"9": "", // "Not applicable"
	"N": "cga",
	"R": "body-pl-ra",
	"Z": "",
}

// Канонические коды TED v2 R2.0.9 (CA_TYPE VALUE).
var tedV2AuthorityToCanonical = map[string]string{
	"MINISTRY":           "cga",
	"NATIONAL_AGENCY":    "cga",
	"REGIONAL_AUTHORITY": "ra",
	"REGIONAL_AGENCY":    "body-pl-ra",
	"BODY_PUBLIC":        "body-pl",
	"EU_INSTITUTION":     "eu-ins-bod-ag",
	"OTHER":              "", // нет эквивалента, как и старый код "8"
}

// Описания кодов правового типа заказчика (codelist buyer-legal-type).
var authorityTypeDescriptions = map[string]string{
	"cga":           "Central government authority",
	"ra":            "Regional authority",
	"eu-ins-bod-ag": "EU institution, body or agency",
	"body-pl":       "Body governed by public law",
	"body-pl-cga":   "Body governed by public law, controlled by a central government authority",
	"body-pl-la":    "Body governed by public law, controlled by a local authority",
	"body-pl-ra":    "Body governed by public law, controlled by a regional authority",
	"la":            "Local authority",
	"def-cont":      "Defence contractor",
	"int-org":       "International organisation",
	"pub-undert":    "Public undertaking",
}

// Старые коды предмета контракта (R2.0.7/R2.0.8 NC_CONTRACT_NATURE CODE).
// Проверено эмпирически на файлах F03_2014 с двойной кодировкой:
// "1" -> WORKS (1 961 совпадение), "2" -> SUPPLIES (5 049), "4" -> SERVICES (6 226).
var contractNatureCodeMap = map[string]string{
	"1": "works",
	"2": "supplies",
	"4": "services",
}

// Канонические коды TED v2 R2.0.9 (TYPE_CONTRACT CTYPE).
var tedV2ContractNatureToCanonical = map[string]string{
	"WORKS":    "works",
	"SUPPLIES": "supplies",
	"SERVICES": "services",
}

// Известные коды eForms (codelist contract-nature-types).
var contractNatureCodes = map[string]struct{}{
	"works":    {},
	"supplies": {},
	"services": {},
	"combined": {},
}

// NormalizeContractNature приводит код предмета контракта к форме eForms.
// Пустой вход и неизвестные коды дают nil; неизвестный код логируется.
func NormalizeContractNature(raw string) *string {
	if raw == "" {
		return nil
	}

	if canonical, ok := contractNatureCodeMap[raw]; ok {
		return &canonical
	}
	if canonical, ok := tedV2ContractNatureToCanonical[raw]; ok {
		return &canonical
	}
	if _, ok := contractNatureCodes[raw]; ok {
		return &raw
	}

	logging.GetLogger().Warnf("Unknown contract nature code: %q", raw)
	return nil
}

// NormalizeProcedureType приводит код типа процедуры к записи канонического
// кодового списка и флагу ускоренной процедуры. description — свободный текст
// из XML (используется только для кодов, уже пришедших в форме eForms).
func NormalizeProcedureType(raw string, description string) (*notices.CodelistEntry, bool) {
	if raw == "" || raw == "unpublished" {
		return nil, false
	}

	if m, ok := procedureTypeCodeMap[raw]; ok {
		return procedureEntry(m.code), m.accelerated
	}
	if m, ok := tedV2ProcedureToCanonical[raw]; ok {
		return procedureEntry(m.code), m.accelerated
	}
	if desc, ok := procedureTypeDescriptions[raw]; ok {
		if description == "" {
			description = desc
		}
		return &notices.CodelistEntry{Code: raw, Description: &description}, false
	}

	logging.GetLogger().Warnf("Unknown procedure type code: %q", raw)
	return nil, false
}

func procedureEntry(canonical string) *notices.CodelistEntry {
	if canonical == "" {
		return nil
	}
	entry := &notices.CodelistEntry{Code: canonical}
	if desc, ok := procedureTypeDescriptions[canonical]; ok {
		entry.Description = &desc
	}
	return entry
}

// NormalizeAuthorityType приводит код правового типа заказчика к записи
// канонического кодового списка.
func NormalizeAuthorityType(raw string) *notices.CodelistEntry {
	if raw == "" {
		return nil
	}

	if canonical, ok := authorityTypeCodeMap[raw]; ok {
		return authorityEntry(canonical)
	}
	if canonical, ok := tedV2AuthorityToCanonical[raw]; ok {
		return authorityEntry(canonical)
	}
	if desc, ok := authorityTypeDescriptions[raw]; ok {
		return &notices.CodelistEntry{Code: raw, Description: &desc}
	}

	logging.GetLogger().Warnf("Unknown authority type code: %q", raw)
	return nil
}

func authorityEntry(canonical string) *notices.CodelistEntry {
	if canonical == "" {
		return nil
	}
	entry := &notices.CodelistEntry{Code: canonical}
	if desc, ok := authorityTypeDescriptions[canonical]; ok {
		entry.Description = &desc
	}
	return entry
}
