package query

import "testing"

func TestStringification(t *testing.T) {
	cases := []struct {
		node Node
		want string
	}{
		{Root{}, "$"},
		{This{}, "@"},
		{Fields{Names: []string{"foo"}}, "foo"},
		{Child{Left: Root{}, Right: Fields{Names: []string{"foo"}}}, "$.foo"},
		{Child{Left: Root{}, Right: Index{Value: 3}}, "$[3]"},
		{Union{Items: []Node{Index{Value: 0}, Index{Value: 2}}}, "[0,2]"},
		{Fields{Names: []string{"a b"}}, "['a b']"},
		{Fields{Names: []string{"1abc"}}, "['1abc']"},
		{Child{Left: Root{}, Right: Fields{Names: []string{"a b"}}}, "$['a b']"},
		{Fields{Names: []string{"a", "b"}}, "['a','b']"},
		{Fields{Names: []string{"it's"}}, `['it\'s']`},
	}
	for _, c := range cases {
		if got := c.node.String(); got != c.want {
			t.Errorf("%#v.String() = %q, want %q", c.node, got, c.want)
		}
	}
}

func TestIsSingular(t *testing.T) {
	singular := Child{Left: Root{}, Right: Child{Left: Fields{Names: []string{"a"}}, Right: Index{Value: 0}}}
	if !IsSingular(singular) {
		t.Errorf("expected singular query to be singular")
	}
	nonSingular := Child{Left: Root{}, Right: Wildcard{}}
	if IsSingular(nonSingular) {
		t.Errorf("expected wildcard query to be non-singular")
	}
}
