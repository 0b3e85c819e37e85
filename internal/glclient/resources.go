package glclient

import (
	"context"
	"fmt"
	"strconv"

	"labdash/internal/domain"
)

// ListUsersParams are the filters for ListUsers.
type ListUsersParams struct {
	Page    int
	PerPage int
	Search  string
	Humans  bool
}

// ListUsers retrieves a page of GitLab users.
func (c *Client) ListUsers(ctx context.Context, p ListUsersParams) ([]domain.User, error) {
	q := pageQuery(p.Page, p.PerPage, p.Search)
	q.Set("humans", strconv.FormatBool(p.Humans))

	var users []domain.User
	if err := c.get(ctx, "/users", q, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser retrieves a single user by ID.
func (c *Client) GetUser(ctx context.Context, userID int) (*domain.User, error) {
	var user domain.User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListProjectsParams are the filters for ListProjects.
type ListProjectsParams struct {
	Page       int
	PerPage    int
	Search     string
	Membership *bool // nil means "don't filter"
}

// ListProjects retrieves a page of projects, most recently active first.
func (c *Client) ListProjects(ctx context.Context, p ListProjectsParams) ([]domain.Project, error) {
	q := pageQuery(p.Page, p.PerPage, p.Search)
	if p.Membership != nil {
		q.Set("membership", strconv.FormatBool(*p.Membership))
	}

	var projects []domain.Project
	if err := c.get(ctx, "/projects", q, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject retrieves a single project by ID.
func (c *Client) GetProject(ctx context.Context, projectID int) (*domain.Project, error) {
	var project domain.Project
	if err := c.get(ctx, fmt.Sprintf("/projects/%d", projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListMembersParams are the filters for ListProjectMembers.
type ListMembersParams struct {
	Page    int
	PerPage int
	Search  string
}

// ListProjectMembers retrieves a page of a project's members.
func (c *Client) ListProjectMembers(ctx context.Context, projectID int, p ListMembersParams) ([]domain.Member, error) {
	var members []domain.Member
	path := fmt.Sprintf("/projects/%d/members", projectID)
	if err := c.get(ctx, path, pageQuery(p.Page, p.PerPage, p.Search), &members); err != nil {
		return nil, err
	}
	return members, nil
}
