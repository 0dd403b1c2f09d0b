package metrics

import (
	"zenbot/evaluation/harness"
)

// Confusion holds the 4-way counts for one error-type column.
type Confusion struct {
	TP int
	FP int
	TN int
	FN int
}

// ROCPoint is one (false-positive-rate, true-positive-rate) pair.
type ROCPoint struct {
	FPR float64
	TPR float64
}

// ROC is the curve derived from the binary predictions plus its area.
type ROC struct {
	Points []ROCPoint
	AUC    float64
}

// Classification is the full metric set for one error-type column.
// Insufficient marks a column with zero valid (non-unknown) rows; ROC is
// nil when the ground truth holds a single class, which is a distinct
// not-applicable state rather than an AUC of zero.
type Classification struct {
	Insufficient bool
	ValidRows    int
	UnknownRatio float64

	Confusion
	Precision float64
	Recall    float64
	F1        float64
	FPR       float64
	FNR       float64

	ROC *ROC
}

// Classify computes classification metrics over one column of labels.
// Truth and prediction vectors are rebuilt from the 4-way label: TP and FN
// mean the truth was positive, TP and FP mean the prediction was positive.
// Every 0/0 ratio yields 0.
func Classify(labels []harness.Label) Classification {
	var c Classification
	unknown := 0
	for _, label := range labels {
		switch label {
		case harness.LabelTP:
			c.TP++
		case harness.LabelFP:
			c.FP++
		case harness.LabelTN:
			c.TN++
		case harness.LabelFN:
			c.FN++
		default:
			unknown++
		}
	}
	if len(labels) > 0 {
		c.UnknownRatio = float64(unknown) / float64(len(labels))
	}

	c.ValidRows = c.TP + c.FP + c.TN + c.FN
	if c.ValidRows == 0 {
		c.Insufficient = true
		return c
	}

	c.Precision = safeRatio(c.TP, c.TP+c.FP)
	c.Recall = safeRatio(c.TP, c.TP+c.FN)
	if c.Precision+c.Recall > 0 {
		c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
	}
	c.FPR = safeRatio(c.FP, c.FP+c.TN)
	c.FNR = safeRatio(c.FN, c.FN+c.TP)

	positives := c.TP + c.FN
	negatives := c.FP + c.TN
	if positives > 0 && negatives > 0 {
		c.ROC = rocFromConfusion(c.FPR, c.Recall)
	}
	return c
}

// rocFromConfusion builds the three-point curve a binary predictor yields
// and integrates it with the trapezoid rule.
func rocFromConfusion(fpr, tpr float64) *ROC {
	points := []ROCPoint{{0, 0}, {fpr, tpr}, {1, 1}}
	var auc float64
	for i := 1; i < len(points); i++ {
		auc += (points[i].FPR - points[i-1].FPR) * (points[i].TPR + points[i-1].TPR) / 2
	}
	return &ROC{Points: points, AUC: auc}
}

func safeRatio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
