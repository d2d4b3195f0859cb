package connect

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"
)

// Avatars are assigned to members without one, picked deterministically
// from the member id and name.
var Avatars = []string{
	"https://i.pravatar.cc/150?u=1",
	"https://i.pravatar.cc/150?u=2",
	"https://i.pravatar.cc/150?u=3",
	"https://i.pravatar.cc/150?u=4",
	"https://i.pravatar.cc/150?u=5",
	"https://i.pravatar.cc/150?u=8",
	"https://i.pravatar.cc/150?u=12",
}

// Member is a directory entry.
type Member struct {
	ID         string
	Name       string
	Role       string
	Skills     []string
	LookingFor string
	Avatar     string
}

// DecodeMember fills defaults for missing fields and rejects fields of
// the wrong type.
func DecodeMember(d Document) (Member, error) {
	if d.ID == "" {
		return Member{}, fmt.Errorf("%w: member without id", ErrDecode)
	}
	name, err := stringField(d, "name", false)
	if err != nil {
		return Member{}, err
	}
	role, err := stringField(d, "role", false)
	if err != nil {
		return Member{}, err
	}
	looking, err := stringField(d, "looking_for", false)
	if err != nil {
		return Member{}, err
	}
	avatar, err := stringField(d, "avatar", false)
	if err != nil {
		return Member{}, err
	}
	skills, err := stringsField(d, "skills")
	if err != nil {
		return Member{}, err
	}

	m := Member{ID: d.ID, Name: name, Role: role, Skills: skills, LookingFor: looking, Avatar: avatar}
	if m.Avatar == "" {
		m.Avatar = FallbackAvatar(d.ID, name)
	}
	if m.Name == "" {
		m.Name = "Anonymous"
	}
	if m.Role == "" {
		m.Role = "Innovator"
	}
	if m.Skills == nil {
		m.Skills = []string{}
	}
	return m, nil
}

// FallbackAvatar picks from Avatars by the first UTF-16 unit of id plus
// the UTF-16 length of name.
func FallbackAvatar(id, name string) string {
	units := utf16.Encode([]rune(id))
	if len(units) == 0 {
		return Avatars[0]
	}
	n := len(utf16.Encode([]rune(name)))
	return Avatars[(int(units[0])+n)%len(Avatars)]
}

// LoadDirectory returns every member except viewer.
func LoadDirectory(ctx context.Context, b Backend, viewer string) ([]Member, error) {
	docs, err := b.Query(ctx, CollectionUsers)
	if err != nil {
		return nil, &LoadError{Op: "members", Err: err}
	}
	members := make([]Member, 0, len(docs))
	for _, d := range docs {
		if viewer != "" && d.ID == viewer {
			continue
		}
		m, err := DecodeMember(d)
		if err != nil {
			return nil, &LoadError{Op: "members", Err: err}
		}
		members = append(members, m)
	}
	return members, nil
}

// Search matches term case-insensitively against name, role and skills.
// An empty term matches everyone.
func Search(members []Member, term string) []Member {
	term = strings.ToLower(term)
	var out []Member
	for _, m := range members {
		if matches(m, term) {
			out = append(out, m)
		}
	}
	return out
}

func matches(m Member, term string) bool {
	if strings.Contains(strings.ToLower(m.Name), term) || strings.Contains(strings.ToLower(m.Role), term) {
		return true
	}
	for _, s := range m.Skills {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}
