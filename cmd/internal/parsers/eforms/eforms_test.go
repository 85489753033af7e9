package eforms

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureUBL = `<?xml version="1.0" encoding="UTF-8"?>
<ContractAwardNotice xmlns="urn:oasis:names:specification:ubl:schema:xsd:ContractAwardNotice-2"
    xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
    xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
    xmlns:efac="http://data.europa.eu/p27/eforms-ubl-extension-aggregate-components/1"
    xmlns:efbc="http://data.europa.eu/p27/eforms-ubl-extension-basic-components/1"
    xmlns:efext="http://data.europa.eu/p27/eforms-ubl-extensions/1"
    xmlns:ext="urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2">
  <ext:UBLExtensions>
    <ext:UBLExtension>
      <ext:ExtensionContent>
        <efext:EformsExtension>
          <efac:Publication>
            <efbc:PublicationDate>2025-01-02+01:00</efbc:PublicationDate>
          </efac:Publication>
          <efac:NoticeResult>
            <efac:LotResult>
              <cbc:ID schemeName="result">RES-0001</cbc:ID>
              <efac:LotTender>
                <cbc:ID schemeName="tender">TEN-0001</cbc:ID>
              </efac:LotTender>
              <efac:SettledContract>
                <cbc:ID schemeName="contract">CON-0001</cbc:ID>
              </efac:SettledContract>
              <efac:ReceivedSubmissionsStatistics>
                <efbc:StatisticsCode listName="received-submission-type">tenders</efbc:StatisticsCode>
                <efbc:StatisticsNumeric>3</efbc:StatisticsNumeric>
              </efac:ReceivedSubmissionsStatistics>
              <efac:TenderLot>
                <cbc:ID schemeName="Lot">LOT-0001</cbc:ID>
              </efac:TenderLot>
            </efac:LotResult>
            <efac:LotTender>
              <cbc:ID schemeName="tender">TEN-0001</cbc:ID>
              <cac:LegalMonetaryTotal>
                <cbc:PayableAmount currencyID="SEK">2500000</cbc:PayableAmount>
              </cac:LegalMonetaryTotal>
              <efac:TenderingParty>
                <cbc:ID schemeName="tendering-party">TPA-0001</cbc:ID>
              </efac:TenderingParty>
            </efac:LotTender>
            <efac:SettledContract>
              <cbc:ID schemeName="contract">CON-0001</cbc:ID>
              <cbc:Title>IT-drift och support</cbc:Title>
              <efac:ContractReference>
                <cbc:ID>K-2025-7</cbc:ID>
              </efac:ContractReference>
            </efac:SettledContract>
            <efac:TenderingParty>
              <cbc:ID schemeName="tendering-party">TPA-0001</cbc:ID>
              <efac:Tenderer>
                <cbc:ID schemeName="organization">ORG-0002</cbc:ID>
              </efac:Tenderer>
            </efac:TenderingParty>
          </efac:NoticeResult>
          <efac:Organizations>
            <efac:Organization>
              <efac:Company>
                <cac:PartyIdentification>
                  <cbc:ID schemeName="organization">ORG-0001</cbc:ID>
                </cac:PartyIdentification>
                <cac:PartyName>
                  <cbc:Name>Stockholms stad</cbc:Name>
                </cac:PartyName>
                <cac:PostalAddress>
                  <cbc:StreetName>Stadshuset</cbc:StreetName>
                  <cbc:CityName>Stockholm</cbc:CityName>
                  <cbc:PostalZone>10535</cbc:PostalZone>
                  <cbc:CountrySubentityCode listName="nuts">SE110</cbc:CountrySubentityCode>
                  <cac:Country>
                    <cbc:IdentificationCode listName="country">SE</cbc:IdentificationCode>
                  </cac:Country>
                </cac:PostalAddress>
                <cac:PartyLegalEntity>
                  <cbc:CompanyID schemeName="national">212000-0142</cbc:CompanyID>
                </cac:PartyLegalEntity>
                <cac:Contact>
                  <cbc:Telephone>+46 8 508 00 000</cbc:Telephone>
                  <cbc:ElectronicMail>upphandling@stockholm.se</cbc:ElectronicMail>
                </cac:Contact>
              </efac:Company>
            </efac:Organization>
            <efac:Organization>
              <efac:Company>
                <cac:PartyIdentification>
                  <cbc:ID schemeName="organization">ORG-0002</cbc:ID>
                </cac:PartyIdentification>
                <cac:PartyName>
                  <cbc:Name>IT Konsult AB</cbc:Name>
                </cac:PartyName>
                <cac:PostalAddress>
                  <cbc:CityName>Solna</cbc:CityName>
                  <cac:Country>
                    <cbc:IdentificationCode listName="country">SE</cbc:IdentificationCode>
                  </cac:Country>
                </cac:PostalAddress>
              </efac:Company>
            </efac:Organization>
          </efac:Organizations>
        </efext:EformsExtension>
      </ext:ExtensionContent>
    </ext:UBLExtension>
  </ext:UBLExtensions>
  <cbc:IssueDate>2025-01-02+01:00</cbc:IssueDate>
  <cac:ContractingParty>
    <cac:Party>
      <cac:PartyIdentification>
        <cbc:ID schemeName="organization">ORG-0001</cbc:ID>
      </cac:PartyIdentification>
    </cac:Party>
  </cac:ContractingParty>
  <cac:ProcurementProject>
    <cbc:Name>Drift av IT-system</cbc:Name>
    <cbc:ProcurementTypeCode listName="contract-nature">services</cbc:ProcurementTypeCode>
    <cac:MainCommodityClassification>
      <cbc:ItemClassificationCode listName="cpv">72000000</cbc:ItemClassificationCode>
    </cac:MainCommodityClassification>
    <cac:AdditionalCommodityClassification>
      <cbc:ItemClassificationCode listName="cpv">72500000</cbc:ItemClassificationCode>
    </cac:AdditionalCommodityClassification>
  </cac:ProcurementProject>
  <cac:TenderingProcess>
    <cbc:ProcedureCode listName="procurement-procedure-type">open</cbc:ProcedureCode>
    <cac:ProcessJustification>
      <cbc:ProcessReasonCode listName="accelerated-procedure">false</cbc:ProcessReasonCode>
    </cac:ProcessJustification>
  </cac:TenderingProcess>
  <cac:TenderResult>
    <cbc:AwardDate>2024-12-10+01:00</cbc:AwardDate>
  </cac:TenderResult>
  <cac:ProcurementProjectLot>
    <cbc:ID schemeName="Lot">LOT-0001</cbc:ID>
    <cac:TenderingProcess>
      <cac:ContractingSystemType>
        <cbc:ContractingSystemTypeCode listName="framework-agreement">fa-wo-rc</cbc:ContractingSystemTypeCode>
      </cac:ContractingSystemType>
    </cac:TenderingProcess>
    <cac:ProcurementProject>
      <cbc:FundingProgramCode listName="eu-funded">eu-funds</cbc:FundingProgramCode>
      <cac:RequestedTenderTotal>
        <cbc:EstimatedOverallContractAmount currencyID="SEK">3000000</cbc:EstimatedOverallContractAmount>
      </cac:RequestedTenderTotal>
      <cac:RealizedLocation>
        <cac:Address>
          <cbc:CountrySubentityCode listName="nuts">SE110</cbc:CountrySubentityCode>
        </cac:Address>
      </cac:RealizedLocation>
      <cac:PlannedPeriod>
        <cbc:StartDate>2025-02-01+01:00</cbc:StartDate>
        <cbc:EndDate>2026-01-31+01:00</cbc:EndDate>
      </cac:PlannedPeriod>
    </cac:ProcurementProject>
  </cac:ProcurementProjectLot>
</ContractAwardNotice>`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseUBL(t *testing.T) {
	path := writeFixture(t, "00012345_2025.xml", fixtureUBL)

	notice, err := Parse(path)
	require.NoError(t, err)
	require.NotNil(t, notice)

	t.Run("документ восстановлен из имени файла и даты", func(t *testing.T) {
		doc := notice.Document
		assert.Equal(t, "00012345-2025", doc.DocID)
		require.NotNil(t, doc.Edition)
		assert.Equal(t, "2025002", *doc.Edition)
		require.NotNil(t, doc.OfficialJournalRef)
		assert.Equal(t, "2025/S 002-00012345-2025", *doc.OfficialJournalRef)
		require.NotNil(t, doc.Version)
		assert.Equal(t, Version, *doc.Version)
		require.NotNil(t, doc.PublicationDate)
		assert.Equal(t, time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), *doc.PublicationDate)
		require.NotNil(t, doc.DispatchDate)
		assert.Equal(t, *doc.PublicationDate, *doc.DispatchDate)
		require.NotNil(t, doc.SourceCountry)
		assert.Equal(t, "SE", *doc.SourceCountry)
	})

	t.Run("заказчик найден по ссылке ContractingParty", func(t *testing.T) {
		buyer := notice.Buyer
		assert.Equal(t, "Stockholms stad", buyer.OfficialName)
		require.NotNil(t, buyer.Town)
		assert.Equal(t, "Stockholm", *buyer.Town)
		require.NotNil(t, buyer.NutsCode)
		assert.Equal(t, "SE110", *buyer.NutsCode)
		require.Len(t, buyer.Identifiers, 1)
		assert.Equal(t, "212000-0142", buyer.Identifiers[0].Identifier)
		require.NotNil(t, buyer.Identifiers[0].Scheme)
		assert.Equal(t, "national", *buyer.Identifiers[0].Scheme)

		require.NotNil(t, notice.Document.Email)
		assert.Equal(t, "upphandling@stockholm.se", *notice.Document.Email)
	})

	t.Run("контракт", func(t *testing.T) {
		contract := notice.Contract
		assert.Equal(t, "IT-drift och support", contract.Title)
		require.NotNil(t, contract.MainCpvCode)
		assert.Equal(t, "72000000", *contract.MainCpvCode)
		require.Len(t, contract.CpvCodes, 2)
		assert.Equal(t, "72500000", contract.CpvCodes[1].Code)
		require.NotNil(t, contract.ContractNatureCode)
		assert.Equal(t, "services", *contract.ContractNatureCode)
		require.NotNil(t, contract.ProcedureType)
		assert.Equal(t, "open", contract.ProcedureType.Code)
		assert.False(t, contract.Accelerated)
		require.NotNil(t, contract.EstimatedValue)
		assert.InDelta(t, 3000000, *contract.EstimatedValue, 1e-9)
		require.NotNil(t, contract.EstimatedValueCurrency)
		assert.Equal(t, "SEK", *contract.EstimatedValueCurrency)
		assert.True(t, contract.FrameworkAgreement)
		assert.True(t, contract.EuFunded)
		require.NotNil(t, contract.NutsCode)
		assert.Equal(t, "SE110", *contract.NutsCode)
	})

	t.Run("награда собрана по перекрёстным ссылкам", func(t *testing.T) {
		require.Len(t, notice.Awards, 1)
		award := notice.Awards[0]
		require.NotNil(t, award.LotNumber)
		assert.Equal(t, "LOT-0001", *award.LotNumber)
		require.NotNil(t, award.AwardedValue)
		assert.InDelta(t, 2500000, *award.AwardedValue, 1e-9)
		require.NotNil(t, award.AwardedValueCurrency)
		assert.Equal(t, "SEK", *award.AwardedValueCurrency)
		require.NotNil(t, award.ContractNumber)
		assert.Equal(t, "K-2025-7", *award.ContractNumber)
		require.NotNil(t, award.AwardTitle)
		assert.Equal(t, "IT-drift och support", *award.AwardTitle)
		require.NotNil(t, award.TendersReceived)
		assert.Equal(t, int32(3), *award.TendersReceived)
		require.NotNil(t, award.AwardDate)
		assert.Equal(t, time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC), *award.AwardDate)
		require.NotNil(t, award.ContractStartDate)
		assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), *award.ContractStartDate)
		require.NotNil(t, award.ContractEndDate)
		assert.Equal(t, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), *award.ContractEndDate)
		require.Len(t, award.Contractors, 1)
		assert.Equal(t, "IT Konsult AB", award.Contractors[0].OfficialName)
	})
}

func TestParseUBLVariations(t *testing.T) {
	t.Run("дата-заглушка в TenderResult отсекается", func(t *testing.T) {
		content := strings.Replace(fixtureUBL,
			"<cbc:AwardDate>2024-12-10+01:00</cbc:AwardDate>",
			"<cbc:AwardDate>2000-01-01Z</cbc:AwardDate>", 1)
		notice, err := Parse(writeFixture(t, "00012345_2025.xml", content))
		require.NoError(t, err)
		require.NotNil(t, notice)
		require.Len(t, notice.Awards, 1)
		assert.Nil(t, notice.Awards[0].AwardDate)
	})

	t.Run("без ContractingParty заказчиком берётся первая организация", func(t *testing.T) {
		start := strings.Index(fixtureUBL, "<cac:ContractingParty>")
		end := strings.Index(fixtureUBL, "</cac:ContractingParty>") + len("</cac:ContractingParty>")
		require.Positive(t, start)
		content := fixtureUBL[:start] + fixtureUBL[end:]

		notice, err := Parse(writeFixture(t, "00012345_2025.xml", content))
		require.NoError(t, err)
		require.NotNil(t, notice)
		assert.Equal(t, "Stockholms stad", notice.Buyer.OfficialName)
	})

	t.Run("признак ускоренной процедуры BT-106", func(t *testing.T) {
		content := strings.Replace(fixtureUBL,
			`<cbc:ProcessReasonCode listName="accelerated-procedure">false</cbc:ProcessReasonCode>`,
			`<cbc:ProcessReasonCode listName="accelerated-procedure">true</cbc:ProcessReasonCode>`, 1)
		notice, err := Parse(writeFixture(t, "00012345_2025.xml", content))
		require.NoError(t, err)
		require.NotNil(t, notice)
		assert.True(t, notice.Contract.Accelerated)
	})

	t.Run("без LotResult — nil без ошибки", func(t *testing.T) {
		content := strings.Replace(fixtureUBL, "<efac:LotResult>", "<efac:LotResultGone>", 1)
		content = strings.Replace(content, "</efac:LotResult>", "</efac:LotResultGone>", 1)
		notice, err := Parse(writeFixture(t, "00012345_2025.xml", content))
		require.NoError(t, err)
		assert.Nil(t, notice)
	})

	t.Run("нечисловая сумма — ошибка", func(t *testing.T) {
		content := strings.Replace(fixtureUBL,
			`<cbc:PayableAmount currencyID="SEK">2500000</cbc:PayableAmount>`,
			`<cbc:PayableAmount currencyID="SEK">ca 2500000</cbc:PayableAmount>`, 1)
		_, err := Parse(writeFixture(t, "00012345_2025.xml", content))
		require.Error(t, err)
	})
}
