package core

import (
	"testing"

	"github.com/dkeye/Banter/internal/domain"
)

const (
	roomA = domain.RoomID(7)
	roomB = domain.RoomID(8)
	owner = domain.UserID(1)
)

func TestJoinLeaveSymmetry(t *testing.T) {
	m := NewMembership()
	conn := ConnID("c1")

	if !m.Join(roomA, conn, owner) {
		t.Fatal("first Join returned false")
	}
	if !m.IsMember(roomA, conn) {
		t.Error("IsMember false after Join")
	}
	if got := m.Rooms(conn); len(got) != 1 || got[0] != roomA {
		t.Errorf("Rooms(conn) = %v, want [%d]", got, roomA)
	}
	if got := m.Members(roomA); len(got) != 1 || got[0] != conn {
		t.Errorf("Members(room) = %v, want [%s]", got, conn)
	}

	if !m.Leave(roomA, conn) {
		t.Fatal("Leave returned false for a member")
	}
	if m.IsMember(roomA, conn) {
		t.Error("IsMember true after Leave")
	}
	if got := m.Rooms(conn); len(got) != 0 {
		t.Errorf("Rooms(conn) = %v after Leave, want empty", got)
	}
	if got := m.Members(roomA); len(got) != 0 {
		t.Errorf("Members(room) = %v after Leave, want empty", got)
	}
}

func TestJoinIdempotent(t *testing.T) {
	m := NewMembership()
	conn := ConnID("c1")

	if !m.Join(roomA, conn, owner) {
		t.Fatal("first Join returned false")
	}
	if m.Join(roomA, conn, owner) {
		t.Error("second Join returned true, want no-op")
	}
	if got := m.Members(roomA); len(got) != 1 {
		t.Errorf("member set has %d entries after double join, want 1", len(got))
	}
}

func TestLeaveNotMember(t *testing.T) {
	m := NewMembership()
	if m.Leave(roomA, ConnID("c1")) {
		t.Error("Leave returned true for a non-member")
	}
}

func TestAdminSeededFromOwner(t *testing.T) {
	m := NewMembership()
	m.Join(roomA, ConnID("c1"), owner)

	if !m.IsAdmin(roomA, owner) {
		t.Error("owner is not admin after lazy room creation")
	}
	if m.IsAdmin(roomA, domain.UserID(2)) {
		t.Error("non-owner reported as admin")
	}
	if m.IsAdmin(roomB, owner) {
		t.Error("IsAdmin true for a room with no live entry")
	}
}

func TestOwnerSeedOnlyOnFirstJoin(t *testing.T) {
	m := NewMembership()
	m.Join(roomA, ConnID("c1"), owner)
	m.Leave(roomA, ConnID("c1"))
	// A later join with a different owner id must not reseed the admin set.
	m.Join(roomA, ConnID("c2"), domain.UserID(9))

	if !m.IsAdmin(roomA, owner) {
		t.Error("original owner lost admin after rejoin")
	}
	if m.IsAdmin(roomA, domain.UserID(9)) {
		t.Error("second joiner's owner id gained admin")
	}
}

func TestRoomEntrySurvivesEmptyMemberSet(t *testing.T) {
	m := NewMembership()
	conn := ConnID("c1")
	m.Join(roomA, conn, owner)
	m.Leave(roomA, conn)

	if !m.HasRoom(roomA) {
		t.Error("live room entry evicted when member set became empty")
	}
	if !m.IsAdmin(roomA, owner) {
		t.Error("admin set lost when member set became empty")
	}
}

func TestDropRemovesAllRooms(t *testing.T) {
	m := NewMembership()
	conn := ConnID("c1")
	other := ConnID("c2")
	m.Join(roomA, conn, owner)
	m.Join(roomB, conn, owner)
	m.Join(roomA, other, owner)

	left := m.Drop(conn)
	if len(left) != 2 {
		t.Fatalf("Drop returned %d rooms, want 2", len(left))
	}
	if m.IsMember(roomA, conn) || m.IsMember(roomB, conn) {
		t.Error("dropped connection still a member somewhere")
	}
	if !m.IsMember(roomA, other) {
		t.Error("Drop removed an unrelated connection")
	}
	if got := m.Rooms(conn); len(got) != 0 {
		t.Errorf("Rooms after Drop = %v, want empty", got)
	}
}

func TestDropUnknownConn(t *testing.T) {
	m := NewMembership()
	if got := m.Drop(ConnID("nope")); len(got) != 0 {
		t.Errorf("Drop of unknown conn returned %v, want empty", got)
	}
}
