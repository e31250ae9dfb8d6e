package model

// EntityKind tags the analysis artifact an entity belongs to.
type EntityKind string

const (
	EntityKindNode         EntityKind = "node"     // Fault-tree node (event or gate).
	EntityKindFmeaRow      EntityKind = "fmea_row" // Row of an FMEA table.
	EntityKindRequirement  EntityKind = "requirement"
	EntityKindArchitecture EntityKind = "architecture"
)

// LinkKind classifies an edge between two entities.
type LinkKind string

const (
	LinkKindChild      LinkKind = "child"      // Gate-to-input edge in a fault tree.
	LinkKindTrace      LinkKind = "trace"      // Traceability edge between artifacts.
	LinkKindConnection LinkKind = "connection" // Architecture diagram connection.
)

// ReviewKind distinguishes peer reviews from joint reviews. Only joint
// reviews carry an approval step.
type ReviewKind string

const (
	ReviewKindPeer  ReviewKind = "peer"
	ReviewKindJoint ReviewKind = "joint"
)

// ReviewStatus is the lifecycle state of a review session.
type ReviewStatus string

const (
	ReviewStatusOpen     ReviewStatus = "open"
	ReviewStatusReadOnly ReviewStatus = "read_only" // Past due date, no moderator extension.
	ReviewStatusApproved ReviewStatus = "approved"  // Terminal.
)

// Role is a participant's function within a review session. Permission
// checks compare roles against an explicit table per action rather than
// specializing participant types.
type Role string

const (
	RoleModerator Role = "moderator"
	RoleReviewer  Role = "reviewer"
	RoleApprover  Role = "approver"
)

// ChangeOp classifies a single record in a change-set.
type ChangeOp string

const (
	ChangeOpAdded    ChangeOp = "added"
	ChangeOpRemoved  ChangeOp = "removed"
	ChangeOpModified ChangeOp = "modified"
)

// ChangeTarget says what kind of thing a change record describes.
type ChangeTarget string

const (
	ChangeTargetEntity     ChangeTarget = "entity"
	ChangeTargetLink       ChangeTarget = "link"
	ChangeTargetAllocation ChangeTarget = "allocation"
)
