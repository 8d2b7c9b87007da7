// Package status は面接ラウンドの結果から候補者の進捗ラベルを導出する。
package status

import "github.com/hitoshi/hiretrack/internal/model"

// ステージ結果として認識される値。
const (
	Scheduled   = "Scheduled"
	Shortlisted = "Shortlisted"
	Rejected    = "Rejected"
)

// Signals は進捗ラベルの導出に使用する5つのステージ結果。
type Signals struct {
	L1         string
	L2         string
	L3         string
	Managerial string
	HR         string
}

// stage はステージ名と結果の組。
type stage struct {
	name   string
	status string
}

// SignalsOf はレコードからステージ結果を取り出す。
func SignalsOf(r *model.Record) Signals {
	return Signals{
		L1:         r.L1Status,
		L2:         r.L2Status,
		L3:         r.L3Status,
		Managerial: r.ManagerialStatus,
		HR:         r.HRStatus,
	}
}

// Derive はステージ結果から進捗ラベルを導出する。
//
// L1 → L2 → L3 → Managerial → HR の順に評価し、認識される結果を持つステージのラベルで
// 作業中のラベルを無条件に上書きする。後ろのステージが前のステージの確定結果より優先される
// （最も進んだステージではなく、最後に一致したステージが勝つ）。
// 一致するステージがない場合は空文字列を返す。
func Derive(s Signals) string {
	stages := [...]stage{
		{"L1", s.L1},
		{"L2", s.L2},
		{"L3", s.L3},
		{"Managerial", s.Managerial},
		{"HR", s.HR},
	}

	label := ""
	for _, st := range stages {
		switch st.status {
		case Scheduled:
			label = st.name + " scheduled"
		case Shortlisted:
			label = st.name + " Select"
		case Rejected:
			label = st.name + " Reject"
		}
	}
	return label
}
