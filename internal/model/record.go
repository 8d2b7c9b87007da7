// Package model はドメインモデルを定義する。
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Record は候補者1名分の採用パイプライン情報を表す。
// メールアドレス（正規化済み）を一意キーとし、セクションごとに項目をまとめる。
// JSON表現はフラットで、フロントエンドのフォーム項目名と一致する。
type Record struct {
	Email string `json:"email"`

	Intake
	Screening
	Rounds
	Compensation
	HRRound
	Finalization

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Intake はソーシング時に入力される項目。
// Month と Week は Date から導出される。
type Intake struct {
	Date                      string `json:"date,omitempty"`
	Month                     string `json:"month,omitempty"`
	Week                      string `json:"week,omitempty"`
	RequestedID               string `json:"requestedId,omitempty"`
	Client                    string `json:"client,omitempty"`
	Source                    string `json:"source,omitempty"`
	SourcerName               string `json:"sourcerName,omitempty"`
	Recruiter                 string `json:"recruiter,omitempty"`
	EmploymentType            string `json:"employmentType,omitempty"`
	CurrentRole               string `json:"currentRole,omitempty"`
	CandidateName             string `json:"candidateName,omitempty"`
	ContactNo                 string `json:"contactNo,omitempty"`
	ExpYears                  string `json:"expYears,omitempty"`
	ExpMonths                 string `json:"expMonths,omitempty"`
	KeySkillsExperience       string `json:"keySkillsExperience,omitempty"`
	WorkFromOffice            string `json:"workFromOffice,omitempty"`
	CurrentCompany            string `json:"currentCompany,omitempty"`
	CurrentCompanyJoiningDate string `json:"currentCompanyJoiningDate,omitempty"`
	PreviousCompany           string `json:"previousCompany,omitempty"`
	Education                 string `json:"education,omitempty"`
	PassedOutYear             string `json:"passedOutYear,omitempty"`
	CurrentLocation           string `json:"currentLocation,omitempty"`
	PreferredLocation         string `json:"preferredLocation,omitempty"`
}

// Screening はスクリーニング段階の項目。
type Screening struct {
	ScreeningStatus      string `json:"screeningStatus,omitempty"`
	HackerrankAssessment string `json:"hackerrankAssessment,omitempty"`
	L1Date               string `json:"l1Date,omitempty"`
}

// Rounds は面接ラウンド（L1〜L3、マネージャー面接）の項目。
type Rounds struct {
	L1Status         string `json:"l1Status,omitempty"`
	L1PanelName      string `json:"l1PanelName,omitempty"`
	L2Date           string `json:"l2Date,omitempty"`
	L2Status         string `json:"l2Status,omitempty"`
	L2PanelName      string `json:"l2PanelName,omitempty"`
	L3Date           string `json:"l3Date,omitempty"`
	L3Status         string `json:"l3Status,omitempty"`
	L3PanelName      string `json:"l3PanelName,omitempty"`
	ManagerialDate   string `json:"managerialDate,omitempty"`
	ManagerialStatus string `json:"managerialStatus,omitempty"`
}

// Compensation は報酬条件の項目。
type Compensation struct {
	FixedCTC     string `json:"fixedCTC,omitempty"`
	VariablePay  string `json:"variablePay,omitempty"`
	OfferedCTC   string `json:"offeredCTC,omitempty"`
	NoticePeriod string `json:"noticePeriod,omitempty"`
}

// HRRound はHR面接の項目。
type HRRound struct {
	HRDate   string `json:"hrDate,omitempty"`
	HRName   string `json:"hrName,omitempty"`
	HRStatus string `json:"hrStatus,omitempty"`
}

// Finalization は最終承認・オファー・入社に関する項目。
// FinalStatus、OfferedMonth、JoiningMonth は導出項目。
type Finalization struct {
	ScheduledDateRaj string `json:"scheduledDateRaj,omitempty"`
	ApprovedByRaj    string `json:"approvedByRaj,omitempty"`
	OverallStatus    string `json:"overallStatus,omitempty"`
	FinalStatus      string `json:"finalStatus,omitempty"`
	OfferedDate      string `json:"offeredDate,omitempty"`
	OfferedMonth     string `json:"offeredMonth,omitempty"`
	DateOfJoining    string `json:"dateOfJoining,omitempty"`
	JoiningMonth     string `json:"joiningMonth,omitempty"`
	Remarks          string `json:"remarks,omitempty"`
}

// RecordPatch は部分更新のペイロード。キーはJSONのフィールド名。
type RecordPatch map[string]json.RawMessage

// ReadOnlyFields はクライアントから設定できない項目（導出項目とサービス管理のタイムスタンプ）。
var ReadOnlyFields = map[string]struct{}{
	"month":        {},
	"week":         {},
	"offeredMonth": {},
	"joiningMonth": {},
	"finalStatus":  {},
	"createdAt":    {},
	"updatedAt":    {},
}

// FreeTextFields はHTMLを除去して保存する自由記述項目。
var FreeTextFields = map[string]struct{}{
	"candidateName":       {},
	"currentRole":         {},
	"keySkillsExperience": {},
	"currentCompany":      {},
	"previousCompany":     {},
	"currentLocation":     {},
	"preferredLocation":   {},
	"sourcerName":         {},
	"recruiter":           {},
	"client":              {},
	"overallStatus":       {},
	"remarks":             {},
}

// Email はペイロードに含まれるメールアドレスを返す。
// 含まれない場合、または文字列でない場合は空文字列を返す。
func (p RecordPatch) Email() string {
	raw, ok := p["email"]
	if !ok {
		return ""
	}
	var email string
	if err := json.Unmarshal(raw, &email); err != nil {
		return ""
	}
	return email
}

// Apply はパッチをレコードに浅くマージする。
// パッチに含まれるキーのみ上書きし、含まれないキーは保存済みの値を保持する。
// 読み取り専用項目は無視する。未知のキーや文字列以外の値はInvalidInputエラーになる。
func (r *Record) Apply(p RecordPatch) error {
	current, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(current, &merged); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}

	for key, value := range p {
		if _, readOnly := ReadOnlyFields[key]; readOnly {
			continue
		}
		merged[key] = value
	}

	buf, err := json.Marshal(merged)
	if err != nil {
		return NewInvalidInputError(fmt.Sprintf("invalid record payload: %v", err))
	}

	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()

	var next Record
	if err := dec.Decode(&next); err != nil {
		return NewInvalidInputError(fmt.Sprintf("invalid record payload: %v", err))
	}

	*r = next
	return nil
}

// DeriveDates は日付項目から導出項目（month、week、offeredMonth、joiningMonth）を再計算する。
func (r *Record) DeriveDates() {
	r.Month = MonthShort(r.Date)
	r.Week = WeekOfMonth(r.Date)
	r.OfferedMonth = MonthShort(r.OfferedDate)
	r.JoiningMonth = MonthShort(r.DateOfJoining)
}
