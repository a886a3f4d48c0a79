package iamf

// Demixed channel labels, per spec.md §4.7's label table. Each names one
// channel a decoder must reconstruct by demixing from a lower layer.
const (
	labelR2    = "D_R2"
	labelL3    = "D_L3"
	labelR3    = "D_R3"
	labelLs5   = "D_Ls5"
	labelRs5   = "D_Rs5"
	labelL7    = "D_L7"
	labelR7    = "D_R7"
	labelLrs7  = "D_Lrs7"
	labelRrs7  = "D_Rrs7"
	labelLtb4  = "D_Ltb4"
	labelRtb4  = "D_Rtb4"
	labelLtf2  = "D_Ltf2"
	labelRtf2  = "D_Rtf2"
)

// reconGainBitPosition maps each demixed channel label to its fixed bit
// position in the 12-bit recon-gain presence mask (spec.md §4.7's Figure 5
// table). D_L3 and D_L7 alias bit 0; D_R2, D_R3, and D_R7 alias bit 2.
// Positions 1 (center) and 11 (LFE) are never demixed and have no entry.
var reconGainBitPosition = map[string]int{
	labelL3:   0,
	labelL7:   0,
	labelR2:   2,
	labelR3:   2,
	labelR7:   2,
	labelLs5:  3,
	labelRs5:  4,
	labelLtf2: 5,
	labelRtf2: 6,
	labelLrs7: 7,
	labelRrs7: 8,
	labelLtb4: 9,
	labelRtb4: 10,
}

const opLabelToBitPosition = "LabelToBitPosition"

// LabelToBitPosition returns the fixed recon-gain bit position for a
// demixed channel label.
func LabelToBitPosition(label string) (int, error) {
	pos, ok := reconGainBitPosition[label]
	if !ok {
		return 0, invalidArgf(opLabelToBitPosition, "label %q has no recon-gain bit position", label)
	}
	return pos, nil
}

const opFindDemixedChannels = "FindDemixedChannels"

// FindDemixedChannels computes the labels a decoder must reconstruct when
// moving from accumulated (the union of strictly-lower layers) to layer
// (this layer's ChannelNumbers), per spec.md §4.7's transition table.
// Surround and height channel counts must each be non-decreasing across
// layers (spec.md §8 property 6); FindDemixedChannels does not itself
// re-check that, since ScalableChannelLayoutConfig.Validate already does.
func FindDemixedChannels(accumulated, layer ChannelNumbers) ([]string, error) {
	if layer.Surround > 7 {
		return nil, invalidArgf(opFindDemixedChannels, "surround channel count %d exceeds the maximum of 7", layer.Surround)
	}
	var labels []string
	if accumulated.Surround < 2 && layer.Surround >= 2 {
		labels = append(labels, labelR2)
	}
	if accumulated.Surround < 3 && layer.Surround >= 3 {
		labels = append(labels, labelL3, labelR3)
	}
	if accumulated.Surround < 5 && layer.Surround >= 5 {
		labels = append(labels, labelLs5, labelRs5)
	}
	if accumulated.Surround < 7 && layer.Surround >= 7 {
		labels = append(labels, labelL7, labelR7, labelLrs7, labelRrs7)
	}
	if accumulated.Height == 0 && layer.Height == 2 && layer.Surround > 3 {
		labels = append(labels, labelLtf2, labelRtf2)
	}
	if accumulated.Height == 2 && layer.Height == 4 {
		labels = append(labels, labelLtb4, labelRtb4)
	}
	return labels, nil
}
