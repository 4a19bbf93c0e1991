// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

//go:build integration

package integration

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/taskflow/taskflow/internal/auth"
	"github.com/taskflow/taskflow/internal/org"
)

var accountSeq int

func registerAccount(prefix string) *auth.Account {
	accountSeq++
	account, err := env.Directory.Register(env.ctx, auth.RegisterParams{
		Username: fmt.Sprintf("%s%d", prefix, accountSeq),
		Email:    fmt.Sprintf("%s%d@example.com", prefix, accountSeq),
		Password: "integration-password",
	})
	Expect(err).NotTo(HaveOccurred())
	return account
}

var _ = Describe("Organizations", func() {
	It("creates an organization with its founder as sole owner", func() {
		founder := registerAccount("founder")

		organization, err := env.Registry.CreateOrganization(env.ctx, "Acme Inc", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(organization.Slug).To(Equal("acme-inc"))

		role, isMember, err := env.Registry.RoleOf(env.ctx, founder.ID, organization.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(isMember).To(BeTrue())
		Expect(role).To(Equal(org.RoleOwner))

		count, err := env.Registry.MemberCount(env.ctx, organization.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(1))
	})

	It("resolves slug collisions with integer suffixes", func() {
		founder := registerAccount("slugger")

		first, err := env.Registry.CreateOrganization(env.ctx, "My Startup", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Slug).To(Equal("my-startup"))

		second, err := env.Registry.CreateOrganization(env.ctx, "My Startup", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Slug).To(Equal("my-startup-2"))

		third, err := env.Registry.CreateOrganization(env.ctx, "My Startup!", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(third.Slug).To(Equal("my-startup-3"))
	})

	It("adds members by email and blocks duplicates", func() {
		founder := registerAccount("inviter")
		invitee := registerAccount("invitee")

		organization, err := env.Registry.CreateOrganization(env.ctx, "Member Corp", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())

		membership, err := env.Registry.AddMember(env.ctx, organization.ID, invitee.Email, "member", founder.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(membership.Role).To(Equal(org.RoleMember))
		Expect(membership.InvitedBy).To(HaveValue(Equal(founder.ID)))

		_, err = env.Registry.AddMember(env.ctx, organization.ID, invitee.Email, "member", founder.ID)
		Expect(err).To(MatchError(org.ErrAlreadyMember))

		members, err := env.Registry.ListMembers(env.ctx, organization.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(members).To(HaveLen(2))
	})

	It("never removes an owner membership", func() {
		founder := registerAccount("owner")
		invitee := registerAccount("member")

		organization, err := env.Registry.CreateOrganization(env.ctx, "Sticky Owners", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Registry.AddMember(env.ctx, organization.ID, invitee.Email, "member", founder.ID)
		Expect(err).NotTo(HaveOccurred())

		err = env.Registry.RemoveMember(env.ctx, organization.ID, founder.ID)
		Expect(err).To(MatchError(org.ErrCannotRemoveOwner))

		err = env.Registry.RemoveMember(env.ctx, organization.ID, invitee.ID)
		Expect(err).NotTo(HaveOccurred())
	})

	It("refuses to demote the sole remaining owner", func() {
		founder := registerAccount("solo")
		second := registerAccount("second")

		organization, err := env.Registry.CreateOrganization(env.ctx, "Last Owner Standing", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Registry.UpdateMemberRole(env.ctx, organization.ID, founder.ID, "admin")
		Expect(err).To(MatchError(org.ErrLastOwner))

		_, err = env.Registry.AddMember(env.ctx, organization.ID, second.Email, "owner", founder.ID)
		Expect(err).NotTo(HaveOccurred())

		demoted, err := env.Registry.UpdateMemberRole(env.ctx, organization.ID, founder.ID, "admin")
		Expect(err).NotTo(HaveOccurred())
		Expect(demoted.Role).To(Equal(org.RoleAdmin))
	})

	It("soft-deletes organizations and hides them from slug lookups", func() {
		founder := registerAccount("deleter")

		organization, err := env.Registry.CreateOrganization(env.ctx, "Ephemeral Org", nil, founder.ID)
		Expect(err).NotTo(HaveOccurred())

		Expect(env.Registry.DeleteOrganization(env.ctx, organization.ID)).To(Succeed())

		_, err = env.Registry.GetBySlug(env.ctx, organization.Slug)
		Expect(err).To(MatchError(org.ErrNotFound))
	})

	It("lists a user's organizations with roles", func() {
		member := registerAccount("lister")
		other := registerAccount("other")

		mine, err := env.Registry.CreateOrganization(env.ctx, "Listed Org", nil, member.ID)
		Expect(err).NotTo(HaveOccurred())

		theirs, err := env.Registry.CreateOrganization(env.ctx, "Their Org", nil, other.ID)
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Registry.AddMember(env.ctx, theirs.ID, member.Email, "guest", other.ID)
		Expect(err).NotTo(HaveOccurred())

		listed, err := env.Registry.ListForUser(env.ctx, member.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(listed).To(HaveLen(2))

		roles := map[string]org.Role{}
		for _, uo := range listed {
			roles[uo.Organization.Slug] = uo.Role
		}
		Expect(roles[mine.Slug]).To(Equal(org.RoleOwner))
		Expect(roles[theirs.Slug]).To(Equal(org.RoleGuest))
	})
})
