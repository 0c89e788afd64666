// Package engagementservice lets residents discuss and amplify civic issues:
// comments, upvotes, and advocate endorsements. Engagement rows always point
// at an existing issue; the issue directory port is checked on every write.
package engagementservice
