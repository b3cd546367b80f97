package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/soundofguitara/parma/internal/model"
)

const calendarProductID = "-//Vignetage//Planning//FR"

// icsPriority maps planning priorities onto the RFC 5545 1..9 scale.
var icsPriority = map[int]int{
	model.PriorityHigh:   1,
	model.PriorityMedium: 5,
	model.PriorityLow:    9,
}

var priorityLabels = map[int]string{
	model.PriorityHigh:   "haute",
	model.PriorityMedium: "moyenne",
	model.PriorityLow:    "basse",
}

// BuildPlanningCalendar renders one VEVENT per planning item.
func BuildPlanningCalendar(items []model.PlanningItem, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Planning vignetage")

	for i := range items {
		item := &items[i]
		evt := cal.AddEvent(item.ID + "@vignetage")
		evt.SetDtStampTime(stamp.UTC())
		evt.SetStartAt(item.PlannedStartDate.UTC())
		evt.SetEndAt(item.PlannedEndDate.UTC())
		evt.SetSummary(planningSummary(item))
		evt.SetDescription(planningDescription(item))
		if p, ok := icsPriority[item.Priority]; ok {
			evt.SetProperty(ics.ComponentPropertyPriority, strconv.Itoa(p))
		}
	}
	return cal.Serialize()
}

func planningSummary(item *model.PlanningItem) string {
	if item.Batch == nil {
		return "Lot " + item.BatchID
	}
	return fmt.Sprintf("%s - %s", item.Batch.Code, item.Batch.MedicationName)
}

func planningDescription(item *model.PlanningItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Opérateurs requis : %d\n", item.RequiredOperators)
	if label, ok := priorityLabels[item.Priority]; ok {
		fmt.Fprintf(&b, "Priorité : %s", label)
	}
	if item.Notes != "" {
		b.WriteString("\n" + item.Notes)
	}
	return b.String()
}
