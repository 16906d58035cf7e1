// Package actions holds the normalized, pipeline-internal representation of
// one requested domain operation and the builders that produce it from
// untrusted function-call arguments.
package actions

// Intent names the operation an action performs.
type Intent string

const (
	IntentAddSchedule    Intent = "add_schedule"
	IntentEditSchedule   Intent = "edit_schedule"
	IntentDeleteSchedule Intent = "delete_schedule"

	IntentAddTransaction    Intent = "add_transaction"
	IntentEditTransaction   Intent = "edit_transaction"
	IntentDeleteTransaction Intent = "delete_transaction"

	IntentAddWorkout    Intent = "add_workout"
	IntentEditWorkout   Intent = "edit_workout"
	IntentDeleteWorkout Intent = "delete_workout"

	IntentAddFood    Intent = "add_food"
	IntentEditFood   Intent = "edit_food_entry"
	IntentDeleteFood Intent = "delete_food_entry"

	IntentLogSleep      Intent = "log_sleep"
	IntentEditCheckIn   Intent = "edit_check_in"
	IntentDeleteCheckIn Intent = "delete_check_in"

	IntentAddGoal    Intent = "add_goal"
	IntentEditGoal   Intent = "edit_goal"
	IntentDeleteGoal Intent = "delete_goal"

	IntentUnknown Intent = "unknown"
)

// Intents lists every intent the builders and the executor handle.
var Intents = []Intent{
	IntentAddSchedule, IntentEditSchedule, IntentDeleteSchedule,
	IntentAddTransaction, IntentEditTransaction, IntentDeleteTransaction,
	IntentAddWorkout, IntentEditWorkout, IntentDeleteWorkout,
	IntentAddFood, IntentEditFood, IntentDeleteFood,
	IntentLogSleep, IntentEditCheckIn, IntentDeleteCheckIn,
	IntentAddGoal, IntentEditGoal, IntentDeleteGoal,
	IntentUnknown,
}

// Action is a built action. The set of implementations is closed: every
// concrete type is declared in this file and handled by Decode.
type Action interface {
	Intent() Intent
}

// Context is threaded by value through one transcript's processing.
type Context struct {
	Today    string // YYYY-MM-DD
	Timezone string // IANA name, may be empty
	UserID   string
	Lang     string
}

// ---- schedule ----

type ScheduleItem struct {
	Title      string `json:"title"`
	Date       string `json:"date"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	EndDate    string `json:"endDate,omitempty"` // set only when it differs from Date
	Category   string `json:"category"`
	Recurrence string `json:"recurrence,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type AddSchedule struct {
	Items []ScheduleItem `json:"items"`
}

type ScheduleChanges struct {
	Title      *string `json:"title,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartTime  *string `json:"startTime,omitempty"`
	EndTime    *string `json:"endTime,omitempty"`
	EndDate    *string `json:"endDate,omitempty"`
	Category   *string `json:"category,omitempty"`
	Recurrence *string `json:"recurrence,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

type EditSchedule struct {
	ScheduleID string          `json:"scheduleId,omitempty"`
	Title      string          `json:"title,omitempty"`
	Changes    ScheduleChanges `json:"changes"`
}

type DeleteSchedule struct {
	ScheduleID string `json:"scheduleId,omitempty"`
	Title      string `json:"title,omitempty"`
}

// ---- transaction ----

type AddTransaction struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type TransactionChanges struct {
	Type        *string  `json:"type,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

type EditTransaction struct {
	TransactionID string             `json:"transactionId,omitempty"`
	Description   string             `json:"description,omitempty"`
	Changes       TransactionChanges `json:"changes"`
}

type DeleteTransaction struct {
	TransactionID string `json:"transactionId,omitempty"`
	Description   string `json:"description,omitempty"`
}

// ---- workout ----

type Exercise struct {
	Name   string   `json:"name"`
	Sets   int      `json:"sets"`
	Reps   int      `json:"reps"`
	Weight *float64 `json:"weight,omitempty"`
}

type AddWorkout struct {
	Title     string     `json:"title"`
	Type      string     `json:"type"`
	Duration  float64    `json:"duration"`
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
	Notes     string     `json:"notes,omitempty"`
}

type WorkoutChanges struct {
	Title    *string  `json:"title,omitempty"`
	Type     *string  `json:"type,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Date     *string  `json:"date,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

type EditWorkout struct {
	WorkoutID string         `json:"workoutId,omitempty"`
	Title     string         `json:"title,omitempty"`
	Changes   WorkoutChanges `json:"changes"`
}

type DeleteWorkout struct {
	WorkoutID string `json:"workoutId,omitempty"`
	Title     string `json:"title,omitempty"`
}

// ---- food ----

// Nutrition is the portion-scaled breakdown stored on a food entry.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type AddFood struct {
	Food     string  `json:"food"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	MealType string  `json:"mealType,omitempty"`
	Date     string  `json:"date"`
	Nutrition
	// Source records which cascade step produced the nutrition values.
	Source string `json:"nutritionSource,omitempty"`
}

type FoodChanges struct {
	Food     *string  `json:"food,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     *string  `json:"unit,omitempty"`
	MealType *string  `json:"mealType,omitempty"`
	Date     *string  `json:"date,omitempty"`
	Calories *float64 `json:"calories,omitempty"`
	Protein  *float64 `json:"protein,omitempty"`
	Carbs    *float64 `json:"carbs,omitempty"`
	Fat      *float64 `json:"fat,omitempty"`
}

type EditFood struct {
	FoodEntryID string      `json:"foodEntryId,omitempty"`
	Food        string      `json:"food,omitempty"`
	Changes     FoodChanges `json:"changes"`
}

type DeleteFood struct {
	FoodEntryID string `json:"foodEntryId,omitempty"`
	Food        string `json:"food,omitempty"`
}

// ---- check-in ----

type LogSleep struct {
	Date       string  `json:"date"`
	SleepHours float64 `json:"sleepHours"`
	WakeTime   string  `json:"wakeTime,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

type CheckInChanges struct {
	SleepHours *float64 `json:"sleepHours,omitempty"`
	WakeTime   *string  `json:"wakeTime,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

type EditCheckIn struct {
	CheckInID string         `json:"checkInId,omitempty"`
	Date      string         `json:"date,omitempty"`
	Changes   CheckInChanges `json:"changes"`
}

type DeleteCheckIn struct {
	CheckInID string `json:"checkInId,omitempty"`
	Date      string `json:"date,omitempty"`
}

// ---- goal ----

type AddGoal struct {
	Title  string  `json:"title"`
	Type   string  `json:"type"`
	Target float64 `json:"target"`
	Period string  `json:"period"`
}

type GoalChanges struct {
	Title  *string  `json:"title,omitempty"`
	Type   *string  `json:"type,omitempty"`
	Target *float64 `json:"target,omitempty"`
	Period *string  `json:"period,omitempty"`
}

type EditGoal struct {
	GoalID  string      `json:"goalId,omitempty"`
	Title   string      `json:"title,omitempty"`
	Changes GoalChanges `json:"changes"`
}

type DeleteGoal struct {
	GoalID string `json:"goalId,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ---- unknown ----

// Unknown carries the message reported back when nothing usable was understood.
type Unknown struct {
	Message string `json:"message"`
}

func (*AddSchedule) Intent() Intent       { return IntentAddSchedule }
func (*EditSchedule) Intent() Intent      { return IntentEditSchedule }
func (*DeleteSchedule) Intent() Intent    { return IntentDeleteSchedule }
func (*AddTransaction) Intent() Intent    { return IntentAddTransaction }
func (*EditTransaction) Intent() Intent   { return IntentEditTransaction }
func (*DeleteTransaction) Intent() Intent { return IntentDeleteTransaction }
func (*AddWorkout) Intent() Intent        { return IntentAddWorkout }
func (*EditWorkout) Intent() Intent       { return IntentEditWorkout }
func (*DeleteWorkout) Intent() Intent     { return IntentDeleteWorkout }
func (*AddFood) Intent() Intent           { return IntentAddFood }
func (*EditFood) Intent() Intent          { return IntentEditFood }
func (*DeleteFood) Intent() Intent        { return IntentDeleteFood }
func (*LogSleep) Intent() Intent          { return IntentLogSleep }
func (*EditCheckIn) Intent() Intent       { return IntentEditCheckIn }
func (*DeleteCheckIn) Intent() Intent     { return IntentDeleteCheckIn }
func (*AddGoal) Intent() Intent           { return IntentAddGoal }
func (*EditGoal) Intent() Intent          { return IntentEditGoal }
func (*DeleteGoal) Intent() Intent        { return IntentDeleteGoal }
func (*Unknown) Intent() Intent           { return IntentUnknown }
