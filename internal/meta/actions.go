package meta

import "strconv"

// LeadBucket classifies a Graph action type into the lead channels the
// engine counts. Anything outside the whitelist is Ignored.
type LeadBucket int

const (
	BucketIgnored LeadBucket = iota
	BucketFormLead
	BucketMessagingLead
	BucketSiteLead
)

// String returns the bucket name for diagnostics.
func (b LeadBucket) String() string {
	switch b {
	case BucketFormLead:
		return "form_lead"
	case BucketMessagingLead:
		return "messaging_lead"
	case BucketSiteLead:
		return "site_lead"
	default:
		return "ignored"
	}
}

// ActionWhitelistVersion tracks the lead-action mapping below. Bump it when
// Meta renames or splits lead action types so stored data can be tied to
// the classification that produced it.
const ActionWhitelistVersion = 1

// leadBuckets is the closed whitelist of lead-producing action types.
// "lead" is the platform's aggregate form-lead action;
// "onsite_conversion.lead_grouped" covers on-platform (messaging/instant)
// leads; "offsite_conversion.fb_pixel_lead" covers website pixel leads.
var leadBuckets = map[string]LeadBucket{
	"lead":                             BucketFormLead,
	"onsite_conversion.lead_grouped":   BucketMessagingLead,
	"offsite_conversion.fb_pixel_lead": BucketSiteLead,
}

// ClassifyAction maps a raw Graph action type onto a lead bucket.
func ClassifyAction(actionType string) LeadBucket {
	if b, ok := leadBuckets[actionType]; ok {
		return b
	}
	return BucketIgnored
}

// LeadsFromActions extracts the lead count from a row's action list.
// The platform reports overlapping aggregates (the "lead" entry already
// includes the grouped and pixel variants when several are present), so the
// first whitelisted entry in list order supplies the count. Summing the
// variants would double count.
func LeadsFromActions(actions []ActionEntry) int64 {
	for _, a := range actions {
		if ClassifyAction(a.ActionType) == BucketIgnored {
			continue
		}
		n, err := strconv.ParseInt(a.Value, 10, 64)
		if err != nil {
			continue
		}
		return n
	}
	return 0
}
