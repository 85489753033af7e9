// Package loader сохраняет канонические извещения в базу данных.
//
// Сохранение идемпотентно по doc_id: повторная загрузка того же документа
// не делает ничего. Организации дедуплицируются структурным тождеством
// (уникальное ограничение uq_organization_identity), справочники
// пополняются upsert'ами с сохранением уже известных описаний.
package loader

import (
	"context"
	"database/sql"
	"strings"
	"time"

	db "github.com/zhukovvlad/tedawards-go/cmd/internal/db/sqlc"

	"github.com/zhukovvlad/tedawards-go/cmd/internal/countries"
	"github.com/zhukovvlad/tedawards-go/cmd/internal/notices"
	"github.com/zhukovvlad/tedawards-go/cmd/pkg/logging"
)

// Service сохраняет извещения в рамках транзакций вызывающей стороны.
type Service struct {
	store  db.Store
	logger *logging.Logger
}

// NewService создаёт сервис загрузки.
func NewService(store db.Store, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// SaveOne сохраняет одно извещение в собственной транзакции.
// Возвращает true, если документ был сохранён, false — если уже существовал.
func (s *Service) SaveOne(ctx context.Context, n *notices.Notice) (bool, error) {
	var saved bool
	err := s.store.ExecTx(ctx, func(qtx *db.Queries) error {
		var txErr error
		saved, txErr = s.SaveNotice(ctx, qtx, n)
		return txErr
	})
	return saved, err
}

// SaveNotice сохраняет извещение, работая внутри транзакции вызывающего.
// Порядок вставок подчинён зависимостям внешних ключей: справочники до
// сущностей, организации до документа, документ до контракта и наград.
func (s *Service) SaveNotice(ctx context.Context, qtx *db.Queries, n *notices.Notice) (bool, error) {
	docID := n.Document.DocID

	exists, err := qtx.DocumentExists(ctx, docID)
	if err != nil {
		return false, err
	}
	if exists {
		s.logger.Debugf("Document %s already imported, skipping", docID)
		return false, nil
	}

	if at := n.Document.BuyerAuthorityType; at != nil {
		if err := qtx.UpsertAuthorityType(ctx, db.UpsertAuthorityTypeParams{
			Code:        at.Code,
			Description: nullStringPtr(at.Description),
		}); err != nil {
			return false, err
		}
	}

	buyerCountry := normalizeCountryCode(n.Buyer.CountryCode)
	sourceCountry := normalizeCountryCode(n.Document.SourceCountry)

	type contractorRef struct {
		awardIdx int
		org      notices.Organization
		country  *string
	}
	var contractorRefs []contractorRef
	for i, award := range n.Awards {
		for _, c := range award.Contractors {
			contractorRefs = append(contractorRefs, contractorRef{
				awardIdx: i,
				org:      c,
				country:  normalizeCountryCode(c.CountryCode),
			})
		}
	}

	// Все коды стран — в справочник до сущностей (зависимость FK).
	countrySet := make(map[string]struct{})
	for _, code := range []*string{buyerCountry, sourceCountry} {
		if code != nil {
			countrySet[*code] = struct{}{}
		}
	}
	for _, ref := range contractorRefs {
		if ref.country != nil {
			countrySet[*ref.country] = struct{}{}
		}
	}
	if len(countrySet) > 0 {
		codes := make([]string, 0, len(countrySet))
		names := make([]string, 0, len(countrySet))
		for code := range countrySet {
			codes = append(codes, code)
			name := ""
			if n := countries.Name(code); n != nil {
				name = *n
			}
			names = append(names, name)
		}
		if err := qtx.UpsertCountries(ctx, db.UpsertCountriesParams{
			Codes: codes,
			Names: names,
		}); err != nil {
			return false, err
		}
	}

	buyerOrgID, err := s.saveOrganization(ctx, qtx, n.Buyer, buyerCountry)
	if err != nil {
		return false, err
	}

	if err := qtx.InsertDocument(ctx, documentParams(&n.Document, buyerOrgID, sourceCountry)); err != nil {
		return false, err
	}

	// Дедупликация по коду: upsert не может затронуть одну строку дважды
	// в одном запросе.
	seenCpv := make(map[string]struct{})
	var cpvCodes, cpvDescs []string
	for _, entry := range n.Contract.CpvCodes {
		if _, ok := seenCpv[entry.Code]; ok {
			continue
		}
		seenCpv[entry.Code] = struct{}{}
		cpvCodes = append(cpvCodes, entry.Code)
		desc := ""
		if entry.Description != nil {
			desc = *entry.Description
		}
		cpvDescs = append(cpvDescs, desc)
	}
	if len(cpvCodes) > 0 {
		if err := qtx.UpsertCpvCodes(ctx, db.UpsertCpvCodesParams{
			Codes:        cpvCodes,
			Descriptions: cpvDescs,
		}); err != nil {
			return false, err
		}
	}

	var procedureTypeCode *string
	if pt := n.Contract.ProcedureType; pt != nil {
		if err := qtx.UpsertProcedureType(ctx, db.UpsertProcedureTypeParams{
			Code:        pt.Code,
			Description: nullStringPtr(pt.Description),
		}); err != nil {
			return false, err
		}
		procedureTypeCode = &pt.Code
	}

	contractID, err := qtx.InsertContract(ctx, contractParams(&n.Contract, docID, procedureTypeCode))
	if err != nil {
		return false, err
	}

	if len(cpvCodes) > 0 {
		if err := qtx.InsertContractCpvCodes(ctx, db.InsertContractCpvCodesParams{
			ContractID: contractID,
			CpvCodes:   cpvCodes,
		}); err != nil {
			return false, err
		}
	}

	awardIDs := make([]int64, len(n.Awards))
	for i, award := range n.Awards {
		awardID, err := qtx.InsertAward(ctx, awardParams(&award, contractID))
		if err != nil {
			return false, err
		}
		awardIDs[i] = awardID
	}

	// Подрядчики: один и тот же поставщик в нескольких лотах — одна
	// организация; дубликаты пар (award, org) схлопываются.
	var pairAwardIDs, pairOrgIDs []int64
	seenPairs := make(map[[2]int64]struct{})
	for _, ref := range contractorRefs {
		orgID, err := s.saveOrganization(ctx, qtx, ref.org, ref.country)
		if err != nil {
			return false, err
		}
		pair := [2]int64{awardIDs[ref.awardIdx], orgID}
		if _, ok := seenPairs[pair]; ok {
			continue
		}
		seenPairs[pair] = struct{}{}
		pairAwardIDs = append(pairAwardIDs, pair[0])
		pairOrgIDs = append(pairOrgIDs, pair[1])
	}
	if len(pairAwardIDs) > 0 {
		if err := qtx.InsertAwardContractors(ctx, db.InsertAwardContractorsParams{
			AwardIds:        pairAwardIDs,
			OrganizationIds: pairOrgIDs,
		}); err != nil {
			return false, err
		}
	}

	return true, nil
}

// saveOrganization апсертит организацию и её идентификаторы,
// возвращает id строки организации.
func (s *Service) saveOrganization(ctx context.Context, qtx *db.Queries, org notices.Organization, countryCode *string) (int64, error) {
	orgID, err := qtx.UpsertOrganization(ctx, db.UpsertOrganizationParams{
		OfficialName: org.OfficialName,
		Address:      nullStringPtr(org.Address),
		Town:         nullStringPtr(org.Town),
		PostalCode:   nullStringPtr(org.PostalCode),
		CountryCode:  nullStringPtr(countryCode),
		NutsCode:     nullStringPtr(org.NutsCode),
	})
	if err != nil {
		return 0, err
	}

	for _, ident := range org.Identifiers {
		if err := qtx.InsertOrganizationIdentifier(ctx, db.InsertOrganizationIdentifierParams{
			OrganizationID: orgID,
			Scheme:         nullStringPtr(ident.Scheme),
			Identifier:     ident.Identifier,
		}); err != nil {
			return 0, err
		}
	}

	return orgID, nil
}

// normalizeCountryCode приводит код страны к ISO: верхний регистр,
// устаревший UK становится GB, псевдокод 1A ("Косово") отбрасывается.
func normalizeCountryCode(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	code := strings.ToUpper(*value)
	switch code {
	case "UK":
		code = "GB"
	case "1A":
		return nil
	}
	return &code
}

func documentParams(d *notices.Document, buyerOrgID int64, sourceCountry *string) db.InsertDocumentParams {
	params := db.InsertDocumentParams{
		DocID:                 d.DocID,
		Edition:               nullStringPtr(d.Edition),
		Version:               nullStringPtr(d.Version),
		ReceptionID:           nullStringPtr(d.ReceptionID),
		OfficialJournalRef:    nullStringPtr(d.OfficialJournalRef),
		PublicationDate:       nullTimePtr(d.PublicationDate),
		DispatchDate:          nullTimePtr(d.DispatchDate),
		SourceCountry:         nullStringPtr(sourceCountry),
		ContactPoint:          nullStringPtr(d.ContactPoint),
		Phone:                 nullStringPtr(d.Phone),
		Email:                 nullStringPtr(d.Email),
		UrlGeneral:            nullStringPtr(d.URLGeneral),
		UrlBuyer:              nullStringPtr(d.BuyerURL),
		BuyerOrganizationID:   buyerOrgID,
		BuyerMainActivityCode: nullStringPtr(d.BuyerMainActivityCode),
	}
	if d.BuyerAuthorityType != nil {
		params.BuyerAuthorityTypeCode = sql.NullString{String: d.BuyerAuthorityType.Code, Valid: true}
	}
	return params
}

func contractParams(c *notices.Contract, docID string, procedureTypeCode *string) db.InsertContractParams {
	return db.InsertContractParams{
		DocID:                  docID,
		Title:                  c.Title,
		ShortDescription:       nullStringPtr(c.ShortDescription),
		MainCpvCode:            nullStringPtr(c.MainCpvCode),
		ContractNatureCode:     nullStringPtr(c.ContractNatureCode),
		NutsCode:               nullStringPtr(c.NutsCode),
		ProcedureTypeCode:      nullStringPtr(procedureTypeCode),
		Accelerated:            c.Accelerated,
		FrameworkAgreement:     c.FrameworkAgreement,
		EuFunded:               c.EuFunded,
		EstimatedValue:         nullFloatPtr(c.EstimatedValue),
		EstimatedValueCurrency: nullStringPtr(c.EstimatedValueCurrency),
	}
}

func awardParams(a *notices.Award, contractID int64) db.InsertAwardParams {
	return db.InsertAwardParams{
		ContractID:           contractID,
		ContractNumber:       nullStringPtr(a.ContractNumber),
		AwardTitle:           nullStringPtr(a.AwardTitle),
		TendersReceived:      nullInt32Ptr(a.TendersReceived),
		AwardedValue:         nullFloatPtr(a.AwardedValue),
		AwardedValueCurrency: nullStringPtr(a.AwardedValueCurrency),
		AwardDate:            nullTimePtr(a.AwardDate),
		LotNumber:            nullStringPtr(a.LotNumber),
		ContractStartDate:    nullTimePtr(a.ContractStartDate),
		ContractEndDate:      nullTimePtr(a.ContractEndDate),
	}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloatPtr(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt32Ptr(n *int32) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *n, Valid: true}
}
