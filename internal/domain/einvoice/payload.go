package einvoice

import (
	"strconv"

	"github.com/erp/einvoice/internal/domain/shared"
)

// SchemaVersion is the e-invoice JSON schema version produced by BuildPayload.
const SchemaVersion = "1.1"

// Payload is the e-invoice document submitted for IRN generation.
type Payload struct {
	Version    string         `json:"Version"`
	TranDtls   TranDetails    `json:"TranDtls"`
	DocDtls    DocDetails     `json:"DocDtls"`
	SellerDtls PartyDetails   `json:"SellerDtls"`
	BuyerDtls  BuyerDetails   `json:"BuyerDtls"`
	ItemList   []ItemDetails  `json:"ItemList"`
	ValDtls    ValueDetails   `json:"ValDtls"`
	RefDtls    *ReferenceInfo `json:"RefDtls,omitempty"`
}

type TranDetails struct {
	TaxSch string `json:"TaxSch"`
	SupTyp string `json:"SupTyp"`
	RegRev string `json:"RegRev"`
}

type DocDetails struct {
	Typ string `json:"Typ"`
	No  string `json:"No"`
	Dt  string `json:"Dt"`
}

type PartyDetails struct {
	Gstin string `json:"Gstin"`
	LglNm string `json:"LglNm"`
	TrdNm string `json:"TrdNm,omitempty"`
	Addr1 string `json:"Addr1"`
	Addr2 string `json:"Addr2,omitempty"`
	Loc   string `json:"Loc"`
	Pin   int    `json:"Pin"`
	Stcd  string `json:"Stcd"`
	Ph    string `json:"Ph,omitempty"`
	Em    string `json:"Em,omitempty"`
}

// BuyerDetails adds the place of supply to the party block.
type BuyerDetails struct {
	PartyDetails
	Pos string `json:"Pos"`
}

type ItemDetails struct {
	SlNo       string  `json:"SlNo"`
	PrdDesc    string  `json:"PrdDesc"`
	IsServc    string  `json:"IsServc"`
	HsnCd      string  `json:"HsnCd"`
	Qty        float64 `json:"Qty"`
	Unit       string  `json:"Unit"`
	UnitPrice  float64 `json:"UnitPrice"`
	TotAmt     float64 `json:"TotAmt"`
	AssAmt     float64 `json:"AssAmt"`
	GstRt      float64 `json:"GstRt"`
	IgstAmt    float64 `json:"IgstAmt"`
	CgstAmt    float64 `json:"CgstAmt"`
	SgstAmt    float64 `json:"SgstAmt"`
	TotItemVal float64 `json:"TotItemVal"`
}

type ValueDetails struct {
	AssVal    float64 `json:"AssVal"`
	CgstVal   float64 `json:"CgstVal"`
	SgstVal   float64 `json:"SgstVal"`
	IgstVal   float64 `json:"IgstVal"`
	TotInvVal float64 `json:"TotInvVal"`
}

// ReferenceInfo links a credit note to the invoice it adjusts.
type ReferenceInfo struct {
	PrecDocDtls []PrecedingDocument `json:"PrecDocDtls"`
}

type PrecedingDocument struct {
	InvNo string `json:"InvNo"`
	InvDt string `json:"InvDt"`
}

// BuildPayload maps a document and its parties onto the e-invoice schema
func BuildPayload(doc *Document, unit *SellerUnit, customer *Customer) (*Payload, error) {
	if doc == nil || unit == nil || customer == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document, seller unit and customer are required")
	}
	seller, err := partyDetails(unit.Party)
	if err != nil {
		return nil, err
	}
	buyer, err := partyDetails(customer.Party)
	if err != nil {
		return nil, err
	}

	items := make([]ItemDetails, 0, len(doc.Items))
	for _, item := range doc.Items {
		isService := "N"
		if item.IsService {
			isService = "Y"
		}
		items = append(items, ItemDetails{
			SlNo:       strconv.Itoa(item.SlNo),
			PrdDesc:    item.Description,
			IsServc:    isService,
			HsnCd:      item.HSNCode,
			Qty:        item.Quantity.InexactFloat64(),
			Unit:       item.Unit,
			UnitPrice:  item.UnitPrice.InexactFloat64(),
			TotAmt:     item.AssessableAmount.InexactFloat64(),
			AssAmt:     item.AssessableAmount.InexactFloat64(),
			GstRt:      item.GSTRate.InexactFloat64(),
			IgstAmt:    item.IGSTAmount.InexactFloat64(),
			CgstAmt:    item.CGSTAmount.InexactFloat64(),
			SgstAmt:    item.SGSTAmount.InexactFloat64(),
			TotItemVal: item.TotalItemValue.InexactFloat64(),
		})
	}

	payload := &Payload{
		Version: SchemaVersion,
		TranDtls: TranDetails{
			TaxSch: "GST",
			SupTyp: "B2B",
			RegRev: "N",
		},
		DocDtls: DocDetails{
			Typ: string(doc.Type),
			No:  doc.Number,
			Dt:  doc.Date.Format(DateLayout),
		},
		SellerDtls: seller,
		BuyerDtls:  BuyerDetails{PartyDetails: buyer, Pos: customer.StateCode},
		ItemList:   items,
		ValDtls: ValueDetails{
			AssVal:    doc.AssessableValue.InexactFloat64(),
			CgstVal:   doc.CGSTValue.InexactFloat64(),
			SgstVal:   doc.SGSTValue.InexactFloat64(),
			IgstVal:   doc.IGSTValue.InexactFloat64(),
			TotInvVal: doc.TotalValue.InexactFloat64(),
		},
	}
	if doc.Type == DocumentTypeCreditNote && doc.OriginalInvoiceDate != nil {
		payload.RefDtls = &ReferenceInfo{
			PrecDocDtls: []PrecedingDocument{{
				InvNo: doc.OriginalInvoiceNumber,
				InvDt: doc.OriginalInvoiceDate.Format(DateLayout),
			}},
		}
	}
	return payload, nil
}

func partyDetails(p Party) (PartyDetails, error) {
	pin, err := strconv.Atoi(p.Pincode)
	if err != nil {
		return PartyDetails{}, shared.NewDomainError("INVALID_INPUT", "Pincode must be numeric")
	}
	addr1, addr2 := SplitAddress(p.Address)
	return PartyDetails{
		Gstin: p.GSTIN,
		LglNm: p.LegalName,
		TrdNm: p.TradeName,
		Addr1: addr1,
		Addr2: addr2,
		Loc:   p.Location,
		Pin:   pin,
		Stcd:  p.StateCode,
		Ph:    p.Phone,
		Em:    p.Email,
	}, nil
}
