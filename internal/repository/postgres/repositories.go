package postgres

// Repositories groups concrete PostgreSQL repository implementations backed
// by a single executor. The application constructs the set twice: once over
// the RLS-scoped pool for public reads and once over the service-role pool
// for moderation and role resolution.
type Repositories struct {
	Listings *ListingRepository
	Members  *MemberRepository
}

// NewRepositories wires all repositories backed by the provided executor.
func NewRepositories(exec pgExecutor) *Repositories {
	return &Repositories{
		Listings: NewListingRepository(exec),
		Members:  NewMemberRepository(exec),
	}
}
