// Package models defines the core domain models for hisab, a shared-living
// ("mess") expense ledger.
//
// # Entities
//
//   - User: a registered account.
//   - Group: a mess. Its GroupType selects how costs are shared and its
//     ManagerID names the member who holds the common fund.
//   - Member: a user's membership in a group, with role flags.
//   - Expense: money a member paid on the group's behalf.
//   - Fund: cash a member handed to the manager.
//   - Meal: one member's meal counts for one day.
//   - Notification, MealRequest: messages around the ledger.
//
// # Snapshots
//
// The calculator never talks to storage. Callers load a Snapshot (group,
// members and every ledger entry) and hand it over; the calculator treats it
// as read-only.
//
// # Design Principles
//
//  1. Money is always a money.Amount (integer minor units), never a float.
//  2. Meal counts are decimals so half meals are representable.
//  3. Relationships are ID strings, not pointers.
//  4. Dates are calendar dates; time of day never matters to the ledger.
package models
