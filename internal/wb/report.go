package wb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

const (
	reportPath = "/api/v5/supplier/reportDetailByPeriod"

	// MaxReportLimit is both the default and the maximum page size.
	MaxReportLimit = 100000

	// maxReportedFields caps the field list of a validation error.
	maxReportedFields = 20
)

// ReportQuery selects one page of the realization report. It is a value type;
// WithCursor returns a modified copy.
type ReportQuery struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Limit    *int   `json:"limit,omitempty"`
	Cursor   *int64 `json:"rrdid,omitempty"`
}

// WithCursor returns a copy of q starting after the given row identifier.
func (q ReportQuery) WithCursor(cursor int64) ReportQuery {
	q.Cursor = &cursor
	return q
}

// WithLimit returns a copy of q with the page size set.
func (q ReportQuery) WithLimit(limit int) ReportQuery {
	q.Limit = &limit
	return q
}

// Validate checks the query bounds.
func (q ReportQuery) Validate() error {
	var failed []string
	if strings.TrimSpace(q.DateFrom) == "" {
		failed = append(failed, "dateFrom: required")
	}
	if strings.TrimSpace(q.DateTo) == "" {
		failed = append(failed, "dateTo: required")
	}
	if q.Limit != nil && (*q.Limit < 1 || *q.Limit > MaxReportLimit) {
		failed = append(failed, fmt.Sprintf("limit: must be between 1 and %d", MaxReportLimit))
	}
	if q.Cursor != nil && *q.Cursor < 0 {
		failed = append(failed, "rrdid: must be >= 0")
	}
	if len(failed) > 0 {
		return NewValidation("invalid report query", failed...)
	}
	return nil
}

func (q ReportQuery) params() url.Values {
	v := url.Values{}
	v.Set("dateFrom", q.DateFrom)
	v.Set("dateTo", q.DateTo)
	if q.Limit != nil {
		v.Set("limit", strconv.Itoa(*q.Limit))
	}
	if q.Cursor != nil {
		v.Set("rrdid", strconv.FormatInt(*q.Cursor, 10))
	}
	return v
}

// ReportRow is one line of the realization report. Pointer fields are optional
// upstream; every other field must be present in a valid response, except
// brand_name and suppliercontract_code.
type ReportRow struct {
	RealizationReportID          int64    `json:"realizationreport_id"`
	DateFrom                     string   `json:"date_from"`
	DateTo                       string   `json:"date_to"`
	CreateDt                     string   `json:"create_dt"`
	CurrencyName                 string   `json:"currency_name"`
	SupplierContractCode         any      `json:"suppliercontract_code,omitempty"`
	RrdID                        int64    `json:"rrd_id"`
	GiID                         int64    `json:"gi_id"`
	DlvPrc                       float64  `json:"dlv_prc"`
	FixTariffDateFrom            string   `json:"fix_tariff_date_from"`
	FixTariffDateTo              string   `json:"fix_tariff_date_to"`
	SubjectName                  string   `json:"subject_name"`
	NmID                         int64    `json:"nm_id"`
	BrandName                    string   `json:"brand_name,omitempty"`
	SaName                       string   `json:"sa_name"`
	TsName                       string   `json:"ts_name"`
	Barcode                      string   `json:"barcode"`
	DocTypeName                  string   `json:"doc_type_name"`
	Quantity                     float64  `json:"quantity"`
	RetailPrice                  float64  `json:"retail_price"`
	RetailAmount                 float64  `json:"retail_amount"`
	SalePercent                  float64  `json:"sale_percent"`
	CommissionPercent            float64  `json:"commission_percent"`
	OfficeName                   string   `json:"office_name"`
	SupplierOperName             string   `json:"supplier_oper_name"`
	OrderDt                      string   `json:"order_dt"`
	SaleDt                       string   `json:"sale_dt"`
	RrDt                         string   `json:"rr_dt"`
	ShkID                        int64    `json:"shk_id"`
	RetailPriceWithDiscRub       float64  `json:"retail_price_withdisc_rub"`
	DeliveryAmount               float64  `json:"delivery_amount"`
	ReturnAmount                 float64  `json:"return_amount"`
	DeliveryRub                  float64  `json:"delivery_rub"`
	GiBoxTypeName                string   `json:"gi_box_type_name"`
	ProductDiscountForReport     float64  `json:"product_discount_for_report"`
	SupplierPromo                float64  `json:"supplier_promo"`
	Rid                          int64    `json:"rid"`
	PpvzSppPrc                   float64  `json:"ppvz_spp_prc"`
	PpvzKvwPrcBase               float64  `json:"ppvz_kvw_prc_base"`
	PpvzKvwPrc                   float64  `json:"ppvz_kvw_prc"`
	SupRatingPrcUp               *float64 `json:"sup_rating_prc_up,omitempty"`
	IsKgvpV2                     *float64 `json:"is_kgvp_v2,omitempty"`
	PpvzSalesCommission          float64  `json:"ppvz_sales_commission"`
	PpvzForPay                   float64  `json:"ppvz_for_pay"`
	PpvzReward                   float64  `json:"ppvz_reward"`
	AcquiringFee                 float64  `json:"acquiring_fee"`
	AcquiringPercent             float64  `json:"acquiring_percent"`
	PaymentProcessing            string   `json:"payment_processing"`
	AcquiringBank                string   `json:"acquiring_bank"`
	PpvzVw                       float64  `json:"ppvz_vw"`
	PpvzVwNds                    float64  `json:"ppvz_vw_nds"`
	PpvzOfficeName               string   `json:"ppvz_office_name"`
	PpvzOfficeID                 int64    `json:"ppvz_office_id"`
	PpvzSupplierID               int64    `json:"ppvz_supplier_id"`
	PpvzSupplierName             string   `json:"ppvz_supplier_name"`
	PpvzInn                      string   `json:"ppvz_inn"`
	DeclarationNumber            string   `json:"declaration_number"`
	BonusTypeName                *string  `json:"bonus_type_name,omitempty"`
	StickerID                    string   `json:"sticker_id"`
	SiteCountry                  string   `json:"site_country"`
	SrvDbs                       bool     `json:"srv_dbs"`
	Penalty                      float64  `json:"penalty"`
	AdditionalPayment            float64  `json:"additional_payment"`
	RebillLogisticCost           float64  `json:"rebill_logistic_cost"`
	RebillLogisticOrg            *string  `json:"rebill_logistic_org,omitempty"`
	StorageFee                   *float64 `json:"storage_fee,omitempty"`
	Deduction                    *float64 `json:"deduction,omitempty"`
	Acceptance                   *float64 `json:"acceptance,omitempty"`
	AssemblyID                   *int64   `json:"assembly_id,omitempty"`
	Kiz                          *string  `json:"kiz,omitempty"`
	Srid                         string   `json:"srid"`
	ReportType                   int      `json:"report_type"`
	IsLegalEntity                bool     `json:"is_legal_entity"`
	TrbxID                       *string  `json:"trbx_id,omitempty"`
	InstallmentCofinancingAmount *float64 `json:"installment_cofinancing_amount,omitempty"`
	WibesWBDiscountPercent       *float64 `json:"wibes_wb_discount_percent,omitempty"`
}

// ReportFields returns the JSON names of every ReportRow field in declaration order.
func ReportFields() []string {
	return reportFieldInfo().names
}

// RequiredReportFields returns the JSON names a valid response row must carry.
func RequiredReportFields() []string {
	return reportFieldInfo().required
}

type fieldInfo struct {
	names    []string
	required []string
}

var reportFieldInfo = sync.OnceValue(func() fieldInfo {
	var info fieldInfo
	t := reflect.TypeOf(ReportRow{})
	for i := 0; i < t.NumField(); i++ {
		name, opts, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		info.names = append(info.names, name)
		if !strings.Contains(opts, "omitempty") {
			info.required = append(info.required, name)
		}
	}
	return info
})

// FetchReportPage performs one GET for the page selected by q.
func (c *Client) FetchReportPage(ctx context.Context, q ReportQuery, credential string) ([]ReportRow, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	req, err := c.newGet(ctx, c.statisticsBase, reportPath, q.params())
	if err != nil {
		return nil, err
	}
	body, err := c.do(c.reportHTTP, req, credential, errorHints{
		rateLimit:         "1 request per minute",
		defaultBadRequest: "check the dateFrom and dateTo parameters",
	})
	if err != nil {
		return nil, err
	}
	return DecodeReportRows(body)
}

// DecodeReportRows validates a response body against the row schema.
func DecodeReportRows(body []byte) ([]ReportRow, error) {
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(body, &objects); err != nil {
		return nil, NewValidation("response is not an array of report rows", err.Error())
	}
	if objects == nil {
		return nil, NewValidation("response is not an array of report rows", "null body")
	}

	var failed []string
	missing := 0
	for i, obj := range objects {
		for _, name := range RequiredReportFields() {
			v, ok := obj[name]
			if ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				continue
			}
			missing++
			if len(failed) < maxReportedFields {
				failed = append(failed, fmt.Sprintf("[%d].%s: required", i, name))
			}
		}
	}
	if missing > len(failed) {
		failed = append(failed, fmt.Sprintf("and %d more", missing-len(failed)))
	}
	if len(failed) > 0 {
		return nil, NewValidation("invalid report response", failed...)
	}

	rows := make([]ReportRow, 0, len(objects))
	if err := json.Unmarshal(body, &rows); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, NewValidation("invalid report response",
				fmt.Sprintf("%s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value))
		}
		return nil, NewValidation("invalid report response", err.Error())
	}
	return rows, nil
}
