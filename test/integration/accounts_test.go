// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

//go:build integration

package integration

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/taskflow/taskflow/internal/auth"
)

var _ = Describe("Accounts", func() {
	It("registers, logs in, and resolves a bearer token", func() {
		account, token, err := env.Gateway.RegisterAndIssue(env.ctx, auth.RegisterParams{
			Username: "carol",
			Email:    "carol@example.com",
			Password: "carol-password",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(account.ID).NotTo(BeZero())
		Expect(token).NotTo(BeEmpty())

		resolved, err := env.Gateway.Resolve(env.ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(resolved.ID).To(Equal(account.ID))

		loggedIn, loginToken, err := env.Gateway.LoginAndIssue(env.ctx, "carol@example.com", "carol-password")
		Expect(err).NotTo(HaveOccurred())
		Expect(loggedIn.ID).To(Equal(account.ID))
		Expect(loginToken).NotTo(BeEmpty())
	})

	It("rejects a second registration with the same email", func() {
		_, err := env.Directory.Register(env.ctx, auth.RegisterParams{
			Username: "dave",
			Email:    "dave@example.com",
			Password: "dave-password",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Directory.Register(env.ctx, auth.RegisterParams{
			Username: "dave2",
			Email:    "DAVE@example.com",
			Password: "dave-password",
		})
		Expect(err).To(MatchError(auth.ErrDuplicateEmail))
	})

	It("rejects logins with the wrong password", func() {
		_, err := env.Directory.Register(env.ctx, auth.RegisterParams{
			Username: "erin",
			Email:    "erin@example.com",
			Password: "erin-password",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Directory.Authenticate(env.ctx, "erin@example.com", "wrong-password")
		Expect(err).To(MatchError(auth.ErrInvalidCredentials))
	})

	It("re-checks uniqueness on profile updates", func() {
		first, err := env.Directory.Register(env.ctx, auth.RegisterParams{
			Username: "frank",
			Email:    "frank@example.com",
			Password: "frank-password",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = env.Directory.Register(env.ctx, auth.RegisterParams{
			Username: "grace",
			Email:    "grace@example.com",
			Password: "grace-password",
		})
		Expect(err).NotTo(HaveOccurred())

		taken := "grace@example.com"
		_, err = env.Directory.Update(env.ctx, first.ID, auth.UpdateParams{Email: &taken})
		Expect(err).To(MatchError(auth.ErrDuplicateEmail))
	})
})
