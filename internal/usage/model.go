package usage

// Unlimited marks a plan without a usage cap.
const Unlimited = -1

// Counter is a user's usage snapshot.
type Counter struct {
	UsageCount       int    `json:"current_usage"`
	UsageLimit       int    `json:"usage_limit"`
	SubscriptionTier string `json:"subscription_tier"`
}

// IsUnlimited reports whether the counter has no cap.
func (c Counter) IsUnlimited() bool {
	return c.UsageLimit == Unlimited
}

// Remaining returns the number of analyses left, or -1 when unlimited.
func (c Counter) Remaining() int {
	if c.IsUnlimited() {
		return Unlimited
	}
	if left := c.UsageLimit - c.UsageCount; left > 0 {
		return left
	}
	return 0
}
