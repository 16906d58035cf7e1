package actions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"bme-workers/internal/common/logger"
	"bme-workers/internal/intent/nutrition"
	"bme-workers/internal/intent/timeutil"

	"github.com/samber/lo"
)

var ErrUnsupportedIntent = errors.New("unsupported intent")

// Enricher resolves nutrition for a food mention. Implementations never fail.
type Enricher interface {
	Enrich(ctx context.Context, q nutrition.Query) nutrition.Result
}

type BuilderConfig struct {
	// FoodDescriptionMaxChars is the exclusive length under which a
	// single-word, uncategorized expense is recategorized as "Food".
	FoodDescriptionMaxChars int
}

// Builder turns validated directive arguments into actions. It holds no
// per-transcript state and is safe for concurrent use.
type Builder struct {
	config   BuilderConfig
	enricher Enricher
	logger   logger.Logger
}

func NewBuilder(config BuilderConfig, enricher Enricher, log logger.Logger) *Builder {
	if config.FoodDescriptionMaxChars <= 0 {
		config.FoodDescriptionMaxChars = 30
	}
	return &Builder{config: config, enricher: enricher, logger: log}
}

// Build dispatches on intent. Only the nutrition lookup for food intents
// performs I/O.
func (b *Builder) Build(ctx context.Context, c Context, intent Intent, args Args) (Action, error) {
	if args == nil {
		args = Args{}
	}
	switch intent {
	case IntentAddSchedule:
		return b.addSchedule(c, args), nil
	case IntentEditSchedule:
		return b.editSchedule(c, args), nil
	case IntentDeleteSchedule:
		id, _ := args.String("scheduleId")
		title, _ := args.String("title")
		return &DeleteSchedule{ScheduleID: id, Title: title}, nil
	case IntentAddTransaction:
		return b.addTransaction(c, args), nil
	case IntentEditTransaction:
		return b.editTransaction(c, args), nil
	case IntentDeleteTransaction:
		id, _ := args.String("transactionId")
		desc, _ := args.String("description")
		return &DeleteTransaction{TransactionID: id, Description: desc}, nil
	case IntentAddWorkout:
		return b.addWorkout(c, args), nil
	case IntentEditWorkout:
		return b.editWorkout(c, args), nil
	case IntentDeleteWorkout:
		id, _ := args.String("workoutId")
		title, _ := args.String("title")
		return &DeleteWorkout{WorkoutID: id, Title: title}, nil
	case IntentAddFood:
		return b.addFood(ctx, c, args), nil
	case IntentEditFood:
		return b.editFood(ctx, c, args), nil
	case IntentDeleteFood:
		id, _ := args.String("foodEntryId")
		food, _ := args.String("food")
		return &DeleteFood{FoodEntryID: id, Food: food}, nil
	case IntentLogSleep:
		return b.logSleep(c, args), nil
	case IntentEditCheckIn:
		return b.editCheckIn(c, args), nil
	case IntentDeleteCheckIn:
		id, _ := args.String("checkInId")
		return &DeleteCheckIn{CheckInID: id, Date: b.dateOrEmpty(c, args, "date")}, nil
	case IntentAddGoal:
		return b.addGoal(args), nil
	case IntentEditGoal:
		return b.editGoal(args), nil
	case IntentDeleteGoal:
		id, _ := args.String("goalId")
		title, _ := args.String("title")
		return &DeleteGoal{GoalID: id, Title: title}, nil
	case IntentUnknown:
		msg, ok := args.String("message")
		if !ok {
			msg = UnknownIntentReply
		}
		return &Unknown{Message: msg}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedIntent, intent)
	}
}

// ---- shared field policies ----

func (b *Builder) date(c Context, args Args, key string) string {
	if d := b.dateOrEmpty(c, args, key); d != "" {
		return d
	}
	return c.Today
}

func (b *Builder) dateOrEmpty(c Context, args Args, key string) string {
	raw, ok := args.String(key)
	if !ok {
		return ""
	}
	d, ok := timeutil.NormalizeDate(raw, c.Today)
	if !ok {
		return ""
	}
	return d
}

func timeOr(args Args, key, def string) string {
	if raw, ok := args.String(key); ok {
		if t, ok := timeutil.NormalizeTime(raw); ok {
			return t
		}
	}
	return def
}

func timePtr(args Args, key string) *string {
	if t := timeOr(args, key, ""); t != "" {
		return &t
	}
	return nil
}

// enumPtr keeps a present value only when it is allowed; sparse updates
// never write a clamped value over an existing one.
func enumPtr(allowed []string, args Args, key string) *string {
	raw, ok := args.String(key)
	if !ok {
		return nil
	}
	if v, ok := oneOf(allowed, raw); ok {
		return &v
	}
	return nil
}

func nonNegativePtr(args Args, key string) *float64 {
	if v, ok := args.Number(key); ok && v >= 0 {
		return &v
	}
	return nil
}

func positivePtr(args Args, key string) *float64 {
	if v, ok := args.Number(key); ok && v > 0 {
		return &v
	}
	return nil
}

// toUTC converts a local date/time pair when the context carries a zone.
// Without one the values are stored as given.
func toUTC(c Context, date, hhmm string) timeutil.DateTime {
	if utc, ok := timeutil.LocalToUTC(date, hhmm, c.Timezone); ok {
		return utc
	}
	return timeutil.DateTime{Date: date, Time: hhmm}
}

// ---- schedule ----

func (b *Builder) addSchedule(c Context, args Args) *AddSchedule {
	raw := args.Objects("items")
	if len(raw) == 0 && !args.Has("items") && args.Has("title") {
		raw = []Args{args}
	}
	items := lo.Map(raw, func(item Args, _ int) ScheduleItem {
		return b.scheduleItem(c, item)
	})
	return &AddSchedule{Items: items}
}

func (b *Builder) scheduleItem(c Context, args Args) ScheduleItem {
	title, ok := args.String("title")
	if !ok {
		title = Defaults.ScheduleTitle
	}
	date := b.date(c, args, "date")
	start := toUTC(c, date, timeOr(args, "startTime", Defaults.ScheduleStart))
	end := toUTC(c, date, timeOr(args, "endTime", Defaults.ScheduleEnd))

	category, _ := args.String("category")
	recurrence, _ := oneOf(Recurrences, stringArg(args, "recurrence"))
	notes, _ := args.String("notes")

	// UTC conversion can push the end past midnight while the start stays.
	var endDate string
	if end.Date != start.Date {
		endDate = end.Date
	}

	return ScheduleItem{
		Title:      title,
		Date:       start.Date,
		StartTime:  start.Time,
		EndTime:    end.Time,
		EndDate:    endDate,
		Category:   oneOfOr(ScheduleCategories, category, Defaults.ScheduleCategory),
		Recurrence: recurrence,
		Notes:      notes,
	}
}

func (b *Builder) editSchedule(c Context, args Args) *EditSchedule {
	id, _ := args.String("scheduleId")
	title, _ := args.String("title")

	changes := ScheduleChanges{
		Title:      args.StringPtr("newTitle"),
		Category:   enumPtr(ScheduleCategories, args, "category"),
		Recurrence: enumPtr(Recurrences, args, "recurrence"),
		Notes:      args.StringPtr("notes"),
	}

	date := b.dateOrEmpty(c, args, "date")
	if date != "" {
		changes.Date = &date
	}
	// A time without a date converts against today and only the time is written.
	base := lo.Ternary(date != "", date, c.Today)
	if start := timePtr(args, "startTime"); start != nil {
		utc := toUTC(c, base, *start)
		changes.StartTime = &utc.Time
		if date != "" {
			changes.Date = &utc.Date
		}
	}
	if end := timePtr(args, "endTime"); end != nil {
		utc := toUTC(c, base, *end)
		changes.EndTime = &utc.Time
		if date != "" && utc.Date != lo.FromPtrOr(changes.Date, date) {
			changes.EndDate = &utc.Date
		}
	}

	return &EditSchedule{ScheduleID: id, Title: title, Changes: changes}
}

// ---- transaction ----

func (b *Builder) addTransaction(c Context, args Args) *AddTransaction {
	txType := oneOfOr(TransactionTypes, stringArg(args, "type"), Defaults.TransactionType)
	description, _ := args.String("description")

	amount, ok := args.Number("amount")
	if !ok || amount < 0 {
		amount = 0
	}

	rawCategory, hasCategory := args.String("category")
	var category string
	switch {
	case !hasCategory && txType == "expense" && isFoodPurchase(description, b.config.FoodDescriptionMaxChars):
		category = Defaults.FoodPurchase
	default:
		category = oneOfOr(categoriesFor(txType), rawCategory, Defaults.TransactionCategory)
	}

	return &AddTransaction{
		Type:        txType,
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        b.date(c, args, "date"),
	}
}

func (b *Builder) editTransaction(c Context, args Args) *EditTransaction {
	id, _ := args.String("transactionId")
	description, _ := args.String("description")

	changes := TransactionChanges{
		Type:        enumPtr(TransactionTypes, args, "type"),
		Amount:      nonNegativePtr(args, "amount"),
		Description: args.StringPtr("newDescription"),
	}
	allowed := lo.Union(ExpenseCategories, IncomeCategories)
	if changes.Type != nil {
		allowed = categoriesFor(*changes.Type)
	}
	changes.Category = enumPtr(allowed, args, "category")
	if d := b.dateOrEmpty(c, args, "date"); d != "" {
		changes.Date = &d
	}

	return &EditTransaction{TransactionID: id, Description: description, Changes: changes}
}

// ---- workout ----

func (b *Builder) addWorkout(c Context, args Args) *AddWorkout {
	title, ok := args.String("title")
	if !ok {
		title = Defaults.WorkoutTitle
	}
	duration, ok := args.Number("duration")
	if !ok || duration <= 0 {
		duration = Defaults.WorkoutDuration
	}
	notes, _ := args.String("notes")

	exercises := lo.FilterMap(args.Objects("exercises"), func(e Args, _ int) (Exercise, bool) {
		name, ok := e.String("name")
		if !ok {
			return Exercise{}, false
		}
		return Exercise{
			Name:   name,
			Sets:   nonNegativeInt(e.Number("sets")),
			Reps:   nonNegativeInt(e.Number("reps")),
			Weight: nonNegativePtr(e, "weight"),
		}, true
	})

	return &AddWorkout{
		Title:     title,
		Type:      oneOfOr(WorkoutTypes, stringArg(args, "type"), Defaults.WorkoutType),
		Duration:  duration,
		Date:      b.date(c, args, "date"),
		Exercises: exercises,
		Notes:     notes,
	}
}

func (b *Builder) editWorkout(c Context, args Args) *EditWorkout {
	id, _ := args.String("workoutId")
	title, _ := args.String("title")

	changes := WorkoutChanges{
		Title:    args.StringPtr("newTitle"),
		Type:     enumPtr(WorkoutTypes, args, "type"),
		Duration: positivePtr(args, "duration"),
		Notes:    args.StringPtr("notes"),
	}
	if d := b.dateOrEmpty(c, args, "date"); d != "" {
		changes.Date = &d
	}

	return &EditWorkout{WorkoutID: id, Title: title, Changes: changes}
}

// ---- food ----

var uncookedWords = regexp.MustCompile(`(?i)\b(raw|uncooked|crud[oa]s?)\b`)

// PrefersUncooked reports whether the caller asked for the uncooked variant,
// either explicitly or by naming it.
func PrefersUncooked(args Args, food string) bool {
	if raw, ok := args.Bool("raw"); ok {
		return raw
	}
	return uncookedWords.MatchString(food)
}

func (b *Builder) addFood(ctx context.Context, c Context, args Args) *AddFood {
	food, _ := args.String("food")
	quantity, ok := args.Number("quantity")
	if !ok || quantity <= 0 {
		quantity = Defaults.FoodQuantity
	}
	unit, ok := args.String("unit")
	if !ok {
		unit = Defaults.FoodUnit
	}
	mealType, _ := oneOf(MealTypes, stringArg(args, "mealType"))

	entry := &AddFood{
		Food:     food,
		Quantity: quantity,
		Unit:     strings.ToLower(unit),
		MealType: mealType,
		Date:     b.date(c, args, "date"),
	}
	b.EnrichFood(ctx, entry, PrefersUncooked(args, food))
	return entry
}

// EnrichFood fills nutrition and the display name through the cascade.
// It never fails; the worst case is a zero-valued placeholder.
func (b *Builder) EnrichFood(ctx context.Context, entry *AddFood, preferUncooked bool) {
	res := b.enricher.Enrich(ctx, nutrition.Query{
		Name:           entry.Food,
		Quantity:       entry.Quantity,
		Unit:           entry.Unit,
		PreferUncooked: preferUncooked,
	})
	entry.Food = res.Name
	entry.Nutrition = Nutrition{Calories: res.Calories, Protein: res.Protein, Carbs: res.Carbs, Fat: res.Fat}
	entry.Source = string(res.Source)
}

func (b *Builder) editFood(ctx context.Context, c Context, args Args) *EditFood {
	id, _ := args.String("foodEntryId")
	food, _ := args.String("food")

	changes := FoodChanges{
		Food:     args.StringPtr("newFood"),
		Quantity: positivePtr(args, "quantity"),
		MealType: enumPtr(MealTypes, args, "mealType"),
	}
	if unit, ok := args.String("unit"); ok {
		unit = strings.ToLower(unit)
		changes.Unit = &unit
	}
	if d := b.dateOrEmpty(c, args, "date"); d != "" {
		changes.Date = &d
	}

	// Nutrition is recomputed only from a complete portion. With quantity or
	// unit missing the stored value would have to be guessed, and the patch
	// must not overwrite what the entry already has.
	name := lo.Ternary(changes.Food != nil, lo.FromPtr(changes.Food), food)
	if name != "" && changes.Quantity != nil && changes.Unit != nil {
		res := b.enricher.Enrich(ctx, nutrition.Query{
			Name:           name,
			Quantity:       *changes.Quantity,
			Unit:           *changes.Unit,
			PreferUncooked: PrefersUncooked(args, name),
		})
		changes.Calories = &res.Calories
		changes.Protein = &res.Protein
		changes.Carbs = &res.Carbs
		changes.Fat = &res.Fat
		if changes.Food != nil {
			changes.Food = &res.Name
		}
	}

	return &EditFood{FoodEntryID: id, Food: food, Changes: changes}
}

// ---- check-in ----

func (b *Builder) logSleep(c Context, args Args) *LogSleep {
	hours, ok := args.Number("hours")
	if !ok {
		hours, ok = args.Number("sleepHours")
	}
	if !ok || hours < 0 {
		hours = Defaults.SleepHours
	}
	notes, _ := args.String("notes")

	return &LogSleep{
		Date:       b.date(c, args, "date"),
		SleepHours: math.Round(hours*10) / 10,
		WakeTime:   timeOr(args, "wakeTime", ""),
		Notes:      notes,
	}
}

func (b *Builder) editCheckIn(c Context, args Args) *EditCheckIn {
	id, _ := args.String("checkInId")
	changes := CheckInChanges{
		SleepHours: nonNegativePtr(args, "sleepHours"),
		WakeTime:   timePtr(args, "wakeTime"),
		Notes:      args.StringPtr("notes"),
	}
	if changes.SleepHours == nil {
		changes.SleepHours = nonNegativePtr(args, "hours")
	}
	return &EditCheckIn{CheckInID: id, Date: b.dateOrEmpty(c, args, "date"), Changes: changes}
}

// ---- goal ----

func (b *Builder) addGoal(args Args) *AddGoal {
	goalType := oneOfOr(GoalTypes, stringArg(args, "type"), Defaults.GoalType)
	period := oneOfOr(GoalPeriods, stringArg(args, "period"), Defaults.GoalPeriod)
	target, ok := args.Number("target")
	if !ok || target < 0 {
		target = Defaults.GoalTarget
	}
	title, ok := args.String("title")
	if !ok {
		title = fmt.Sprintf("%s %s goal", strings.ToUpper(period[:1])+period[1:], goalType)
	}
	return &AddGoal{Title: title, Type: goalType, Target: target, Period: period}
}

func (b *Builder) editGoal(args Args) *EditGoal {
	id, _ := args.String("goalId")
	title, _ := args.String("title")
	return &EditGoal{
		GoalID: id,
		Title:  title,
		Changes: GoalChanges{
			Title:  args.StringPtr("newTitle"),
			Type:   enumPtr(GoalTypes, args, "type"),
			Target: nonNegativePtr(args, "target"),
			Period: enumPtr(GoalPeriods, args, "period"),
		},
	}
}

func stringArg(args Args, key string) string {
	s, _ := args.String(key)
	return s
}
