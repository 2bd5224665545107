package models

// Violation общий доступ к полям нарушения. Закрытое объединение из
// двух вариантов: PlanViolation и FortFidelityViolation. Нарушения
// неизменяемы и создаются заново на каждом проходе валидации
type Violation interface {
	Code() string
	Day() string
	Exercise() string
	Message() string
}

// PlanViolation нарушение жёсткого правила плана
type PlanViolation struct {
	RuleCode     string
	DayLabel     string
	ExerciseName string
	Text         string
}

func (v PlanViolation) Code() string     { return v.RuleCode }
func (v PlanViolation) Day() string      { return v.DayLabel }
func (v PlanViolation) Exercise() string { return v.ExerciseName }
func (v PlanViolation) Message() string  { return v.Text }

// FortFidelityViolation нарушение верности Fort-дню: потерян якорь
// или нарушен порядок секций
type FortFidelityViolation struct {
	RuleCode     string
	DayLabel     string
	ExerciseName string
	Text         string
}

func (v FortFidelityViolation) Code() string     { return v.RuleCode }
func (v FortFidelityViolation) Day() string      { return v.DayLabel }
func (v FortFidelityViolation) Exercise() string { return v.ExerciseName }
func (v FortFidelityViolation) Message() string  { return v.Text }
