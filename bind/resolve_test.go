package bind

import (
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ctx  Context
		want Resolution
	}{
		{
			name: "registry key with user goes to the profile document",
			key:  KeyTrips,
			ctx:  Context{UserID: "u1"},
			want: Resolution{Scope: ScopeUserProfile, LocalKey: "global_all-trips", Path: "users/u1/profile/all-trips"},
		},
		{
			name: "registry key stays global even with a trip selected",
			key:  KeyTrips,
			ctx:  Context{UserID: "u1", TripID: "42"},
			want: Resolution{Scope: ScopeUserProfile, LocalKey: "global_all-trips", Path: "users/u1/profile/all-trips"},
		},
		{
			name: "registry key without user stays local",
			key:  KeyTrips,
			ctx:  Context{},
			want: Resolution{Scope: ScopeLocalOnly, LocalKey: "global_all-trips"},
		},
		{
			name: "trip selection is never cloud-synced",
			key:  KeyCurrentTrip,
			ctx:  Context{UserID: "u1", TripID: "42"},
			want: Resolution{Scope: ScopeLocalOnly, LocalKey: "global_current-trip-id"},
		},
		{
			name: "shared key with user and trip goes to the shared trip document",
			key:  KeyMembers,
			ctx:  Context{UserID: "u1", TripID: "42"},
			want: Resolution{Scope: ScopeTripShared, LocalKey: "trip_42_members", Path: "trips/42/data/members"},
		},
		{
			name: "shared key without trip stays local under the global namespace",
			key:  KeyExpenses,
			ctx:  Context{UserID: "u1"},
			want: Resolution{Scope: ScopeLocalOnly, LocalKey: "global_expenses"},
		},
		{
			name: "shared key without user stays local but trip-namespaced",
			key:  KeySchedule,
			ctx:  Context{TripID: "42"},
			want: Resolution{Scope: ScopeLocalOnly, LocalKey: "trip_42_schedule"},
		},
		{
			name: "user-scoped key goes to the per-user trip document",
			key:  KeyPacking,
			ctx:  Context{UserID: "u1", TripID: "42"},
			want: Resolution{Scope: ScopeUserTrip, LocalKey: "trip_42_packing", Path: "users/u1/trips/42/packing"},
		},
		{
			name: "unknown key defaults to local-only, trip-namespaced",
			key:  "scratch",
			ctx:  Context{UserID: "u1", TripID: "42"},
			want: Resolution{Scope: ScopeLocalOnly, LocalKey: "trip_42_scratch"},
		},
		{
			name: "unknown key without trip lands in the global namespace",
			key:  "scratch",
			ctx:  Context{},
			want: Resolution{Scope: ScopeLocalOnly, LocalKey: "global_scratch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.key, tt.ctx)
			if got != tt.want {
				t.Errorf("Resolve(%q, %+v) = %+v, want %+v", tt.key, tt.ctx, got, tt.want)
			}
		})
	}
}
