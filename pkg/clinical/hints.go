package clinical

import (
	"fmt"
	"sort"

	"github.com/o2calc/o2calc/pkg/oxygen"
	"github.com/o2calc/o2calc/pkg/types"
)

// maskStepCeiling is the flow above 6 LPM at which the simple-mask formula
// catches up with the 45% cannula estimate at 6 LPM.
const maskStepCeiling = 6.25

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2, "ok": 3}

// Hints derives clinical considerations for an estimate.
// Hints are ordered: critical first, then warnings, info, ok.
func Hints(res oxygen.Result) []types.Hint {
	var hints []types.Hint

	// ── Room air ──────────────────────────────────────────────────────────────
	if res.Device == oxygen.RoomAir {
		return []types.Hint{{
			Key:   "room_air",
			Level: "ok",
			Title: "Room air",
			Detail: "No supplemental oxygen is being delivered. The patient is breathing " +
				"atmospheric air at about 21% oxygen.",
		}}
	}

	// ── Device-specific notes ─────────────────────────────────────────────────
	switch res.Device {
	case oxygen.NasalCannula:
		if res.FlowRate > 4 {
			v := res.FlowRate
			hints = append(hints, types.Hint{
				Key:   "humidification",
				Level: "info",
				Title: "Consider humidification",
				Detail: fmt.Sprintf(
					"At %.1f LPM through a nasal cannula, dry gas can irritate the nasal mucosa. "+
						"Consider adding humidification for sustained use above 4 LPM.",
					res.FlowRate),
				Value: &v,
			})
		}

	case oxygen.SimpleMask:
		if res.FlowRate <= maskStepCeiling {
			v := res.Percentage
			hints = append(hints, types.Hint{
				Key:   "mask_step",
				Level: "warning",
				Title: "Below the 6 LPM cannula estimate",
				Detail: fmt.Sprintf(
					"Switching from a nasal cannula at 6 LPM (45%%) to a simple mask at %.2f LPM "+
						"gives a lower estimate (%.1f%%). The mask approximation is anchored at 5 LPM, "+
						"so estimates only exceed the 6 LPM cannula value above %.2f LPM.",
					res.FlowRate, res.Percentage, maskStepCeiling),
				Value: &v,
			})
		}

	case oxygen.NonRebreather:
		hints = append(hints, types.Hint{
			Key:   "reservoir_bag",
			Level: "info",
			Title: "Keep the reservoir inflated",
			Detail: "A non-rebreather or partial rebreather mask only reaches its estimate when the " +
				"reservoir bag stays at least one-third full during inspiration. Increase the flow " +
				"if the bag collapses.",
		})

	case oxygen.HighFlow:
		v := res.Percentage
		hints = append(hints, types.Hint{
			Key:   "high_flow_fixed",
			Level: "warning",
			Title: "Fixed high-flow estimate",
			Detail: "Above 15 LPM the calculator reports a fixed 90% estimate. High-flow systems and " +
				"Venturi masks deliver the FiO₂ set on the device; read the delivered value from " +
				"the blender or analyser instead.",
			Value: &v,
		})
	}

	// ── High FiO₂ exposure ────────────────────────────────────────────────────
	if res.Percentage >= 60 {
		v := res.Percentage
		hints = append(hints, types.Hint{
			Key:   "high_fio2",
			Level: "warning",
			Title: fmt.Sprintf("%.0f%% oxygen", res.Percentage),
			Detail: "Sustained inspired oxygen at 60% or above carries a risk of oxygen toxicity and " +
				"absorption atelectasis. Reassess the patient and titrate down as soon as " +
				"saturation allows.",
			Value: &v,
		})
	}

	// ── General targets ───────────────────────────────────────────────────────
	hints = append(hints,
		types.Hint{
			Key:   "spo2_target",
			Level: "info",
			Title: "Target SpO₂ 94–98%",
			Detail: "For most patients, titrate the flow to an SpO₂ of 94–98%, taking into account " +
				"the patient's baseline SpO₂ and respiratory status.",
		},
		types.Hint{
			Key:   "copd_target",
			Level: "info",
			Title: "COPD: target 88–92%",
			Detail: "Patients at risk of hypercapnic respiratory failure, such as those with COPD, " +
				"should be targeted to 88–92% to avoid CO₂ retention.",
		},
		types.Hint{
			Key:   "variability",
			Level: "info",
			Title: "Delivered O₂ varies",
			Detail: "Actual delivered oxygen depends on respiratory rate, tidal volume, mouth " +
				"breathing and device fitting. Treat this value as an approximation.",
		},
	)

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}
