// package repositories provides the persistence layer for the notification
// log: which albums have already been announced, and when, so repeated
// check runs never re-send the same message.
package repositories
