/*
reproducibility.go - Run completeness certification

PURPOSE:
  Answers "could this run be exactly reproduced?" by checking that the audit
  record carries every component a re-execution needs: final outputs,
  intermediates, the pinned parameter version, the model version, the input
  aggregates and the environment identifier. The score is the fraction of
  components present (six in total); 1.0 means fully certifiable.
*/
package lineage

// ReproducibilityReport is the outcome of a completeness check on one run.
type ReproducibilityReport struct {
	RunID             string          `json:"run_id"`
	Reproducible      bool            `json:"reproducible"`
	Score             float64         `json:"reproducibility_score"`
	Components        map[string]bool `json:"components"`
	MissingComponents []string        `json:"missing_components"`
}

// componentNames fixes the check order so reports render consistently.
var componentNames = []string{
	"final_outputs",
	"intermediates",
	"parameter_version",
	"model_version",
	"input_aggregates",
	"environment_id",
}

// CheckReproducibility derives the completeness score for an audit record.
// A record that also fails Verify is never reproducible regardless of score.
func CheckReproducibility(record *AuditRecord) ReproducibilityReport {
	components := map[string]bool{
		"final_outputs":     len(record.Outputs) > 0,
		"intermediates":     len(record.Intermediates) > 0,
		"parameter_version": record.ParameterVersion != "",
		"model_version":     record.ModelVersion != "",
		"input_aggregates":  len(record.InputSnapshot) > 0,
		"environment_id":    record.EnvironmentID != "",
	}

	present := 0
	var missing []string
	for _, name := range componentNames {
		if components[name] {
			present++
		} else {
			missing = append(missing, name)
		}
	}

	score := float64(present) / float64(len(componentNames))
	return ReproducibilityReport{
		RunID:             string(record.RunID),
		Reproducible:      score == 1.0 && Verify(record),
		Score:             score,
		Components:        components,
		MissingComponents: missing,
	}
}
