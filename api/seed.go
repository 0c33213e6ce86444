/*
seed.go - Statutory policy seed data and a demo employee

PURPOSE:
  Loads the nine leave types of the Latvian Labour Law (DL) as policies,
  plus one demo employee with a realistic event history, so a fresh
  database answers balance queries immediately.

POLICY SET:
  annual           Ikgadejais atvalinajums        monthly, DL 149
  child-care       Berna kopsanas atvalinajums    on request, shifts year, DL 156
  study            Macibu atvalinajums            yearly capped 20, DL 157
  unpaid           Bezalgas atvalinajums          on request, shifts year, DL 153
  child-extra      Papildatvalinajums par berniem yearly, child based, DL 150-151
  maternity        Grutniecibas atvalinajums      on request, KD, DL 154
  paternity        Paternitates atvalinajums      per event (birth), DL 155
  donor            Asins donora diena             per event, feeds annual, DL 74
  sabbatical       Radosais atvalinajums          on request, DL / collective

SEE ALSO:
  - leave/policy.go: how the rule JSON below is decoded
*/
package api

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

type seedPolicy struct {
	id       leave.PolicyID
	typeCode int
	name     string
	accrue   bool
	normDays int
	rules    string
}

var seedPolicies = []seedPolicy{
	{
		id: "annual", typeCode: 1, name: "Ikgadējais atvaļinājums", accrue: true, normDays: 20,
		rules: `{"measure_unit":"DD","accrual_method":"monthly","period_type":"working_year",
			"shifts_working_year":false,"payment_status":"apmaksāts",
			"financial_formula":"average_salary","law_reference":"DL 149"}`,
	},
	{
		id: "child-care", typeCode: 2, name: "Bērna kopšanas atvaļinājums",
		rules: `{"measure_unit":"DD","accrual_method":"on_request","period_type":"working_year",
			"shifts_working_year":true,"shifts_working_year_threshold_weeks":0,
			"payment_status":"VSAA","financial_formula":"unpaid","law_reference":"DL 156"}`,
	},
	{
		id: "study", typeCode: 3, name: "Mācību atvaļinājums",
		rules: `{"measure_unit":"DD","accrual_method":"yearly","period_type":"calendar_year",
			"max_per_year_dd":20,"expires_end_of_period":true,"payment_status":"apmaksāts",
			"financial_formula":"base_salary","law_reference":"DL 157"}`,
	},
	{
		id: "unpaid", typeCode: 4, name: "Bezalgas atvaļinājums",
		rules: `{"measure_unit":"DD","accrual_method":"on_request","period_type":"working_year",
			"shifts_working_year":true,"shifts_working_year_threshold_weeks":4,
			"payment_status":"neapmaksāts","financial_formula":"unpaid","law_reference":"DL 153"}`,
	},
	{
		id: "child-extra", typeCode: 5, name: "Papildatvaļinājums par bērniem", accrue: true,
		rules: `{"measure_unit":"DD","accrual_method":"yearly","period_type":"calendar_year",
			"expires_end_of_period":true,"child_based":true,"payment_status":"apmaksāts",
			"financial_formula":"average_salary","law_reference":"DL 150-151"}`,
	},
	{
		id: "maternity", typeCode: 6, name: "Grūtniecības un dzemdību atvaļinājums",
		rules: `{"measure_unit":"KD","accrual_method":"on_request","period_type":"working_year",
			"payment_status":"VSAA","financial_formula":"unpaid","law_reference":"DL 154"}`,
	},
	{
		id: "paternity", typeCode: 7, name: "Paternitātes atvaļinājums", accrue: true,
		rules: `{"measure_unit":"DD","accrual_method":"per_event","event_source":"child_registration",
			"event_days":10,"requires_hire_date_check":true,"usage_deadline_months":6,
			"payment_status":"VSAA","financial_formula":"unpaid","law_reference":"DL 155"}`,
	},
	{
		id: "donor", typeCode: 10, name: "Asins donora diena", accrue: true,
		rules: `{"measure_unit":"DD","accrual_method":"per_event","event_source":"donor_day",
			"event_days":1,"add_to_annual_immediately":true,"usage_deadline_months":12,
			"payment_status":"apmaksāts","financial_formula":"average_salary","law_reference":"DL 74"}`,
	},
	{
		id: "sabbatical", typeCode: 11, name: "Radošais atvaļinājums",
		rules: `{"measure_unit":"DD","accrual_method":"on_request","period_type":"working_year",
			"payment_status":"neapmaksāts","financial_formula":"unpaid","law_reference":"DL / Kolektīvais"}`,
	},
}

// SeedPolicies inserts the statutory policy set. Existing policies with the
// same IDs are overwritten, so reseeding is safe.
func SeedPolicies(ctx context.Context, store leave.Store) error {
	for _, sp := range seedPolicies {
		p := leave.Policy{
			ID:        sp.id,
			TypeCode:  sp.typeCode,
			Name:      sp.name,
			Accruable: sp.accrue,
			NormDays:  decimal.NewFromInt(int64(sp.normDays)),
			RawRules:  []byte(sp.rules),
		}
		p.Rules = leave.DecodeRules(p.RawRules)
		if err := store.SavePolicy(ctx, p); err != nil {
			return fmt.Errorf("seeding policy %s: %w", sp.id, err)
		}
	}
	return nil
}

// SeedDemoEmployee inserts one employee with a hire record, a used vacation,
// a child registration and six months of salary records. Returns the new
// employee's ID.
func SeedDemoEmployee(ctx context.Context, store leave.Store) (leave.EmployeeID, error) {
	emp := leave.Employee{
		ID:         leave.EmployeeID(uuid.NewString()),
		FirstName:  "Anna",
		LastName:   "Ozola",
		Position:   "Accountant",
		Department: "Finance",
		StartDate:  leave.MustDate("2023-03-01"),
		BaseSalary: decimal.NewFromInt(1800),
	}
	if err := store.SaveEmployee(ctx, emp); err != nil {
		return "", err
	}

	docs := []leave.Document{
		{
			Type:     leave.DocHire,
			DateFrom: leave.MustDate("2023-03-01"),
			Payload:  map[string]any{"position": "Accountant"},
		},
		{
			Type:     leave.DocVacation,
			DateFrom: leave.MustDate("2024-07-01"),
			DateTo:   leave.MustDate("2024-07-12"),
			Payload:  map[string]any{"vacation_config_id": "annual"},
		},
		{
			Type:     leave.DocChildRegistration,
			DateFrom: leave.MustDate("2024-10-05"),
			Payload:  map[string]any{"child_dob": "2024-10-05"},
		},
		{
			Type:     leave.DocDonorDay,
			DateFrom: leave.MustDate("2025-02-14"),
			DateTo:   leave.MustDate("2025-02-14"),
		},
	}
	for m := 1; m <= 6; m++ {
		docs = append(docs, leave.Document{
			Type:     leave.DocSalaryRecord,
			DateFrom: leave.NewDate(2025, 1, 1).AddMonths(m-1),
			Payload:  map[string]any{"amount": 1800.0, "worked_days": 21},
		})
	}

	for _, d := range docs {
		d.ID = leave.DocumentID(uuid.NewString())
		d.EmployeeID = emp.ID
		if err := store.SaveDocument(ctx, d); err != nil {
			return "", err
		}
	}
	return emp.ID, nil
}
