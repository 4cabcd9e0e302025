package sqlinline

const QUpsertGoogleUser = `--sql 24610364-3acc-4d6f-abbe-c920e2104f28
insert into users(google_sub, email, name, picture, locale)
values ($1::text, $2::text, $3::text, $4::text, $5::text)
on conflict (google_sub) do update
set email = excluded.email,
    name = excluded.name,
    picture = excluded.picture,
    locale = excluded.locale,
    updated_at = now()
returning id, role;
`

const QSelectUserByID = `--sql 2915923a-7b73-4d3e-8b43-49e420046391
select id, google_sub, email, name, locale, role, created_at, updated_at
from users
where id = $1::uuid;
`
